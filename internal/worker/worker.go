// Package worker runs change-feed events through the synchronizer on a
// bounded queue with at-least-once retry semantics.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/domain/event"
)

// ErrQueueFull is returned by Submit when the queue has no room. The
// caller decides whether to shed or block upstream.
var ErrQueueFull = errors.New("event queue is full")

// Handler applies one change-feed event to the index.
type Handler interface {
	Handle(ctx context.Context, e event.Event) error
}

// Config holds pool sizing and retry settings.
type Config struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns sane pool defaults.
func DefaultConfig() Config {
	return Config{
		Workers:    4,
		QueueSize:  1000,
		MaxRetries: 5,
		RetryDelay: 500 * time.Millisecond,
	}
}

type job struct {
	id    string
	event event.Event
}

// Pool is a fixed-size worker pool over a bounded event queue. Events
// that fail are retried up to MaxRetries times; patches are idempotent
// so a retried event reapplies cleanly.
type Pool struct {
	handler    Handler
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
	workers    int

	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool. Start must be called before Submit.
func NewPool(cfg Config, handler Handler, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		handler:    handler,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		workers:    cfg.Workers,
		jobs:       make(chan job, cfg.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop drains in-flight work. Queued events not yet picked up are
// dropped once ctx expires.
func (p *Pool) Stop(ctx context.Context) {
	p.cancel()
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("Worker pool stop timed out")
	}
}

// Submit enqueues an event and returns its job id, or ErrQueueFull.
func (p *Pool) Submit(e event.Event) (string, error) {
	j := job{id: uuid.NewString(), event: e}
	select {
	case p.jobs <- j:
		return j.id, nil
	default:
		return "", ErrQueueFull
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(j)
		}
	}
}

// process runs one event through the handler, retrying with a fixed
// delay. Events that still fail after the last attempt are logged and
// dropped; the reindexer repairs whatever they left stale.
func (p *Pool) process(j job) {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(p.retryDelay):
			}
		}

		if err = p.handler.Handle(p.ctx, j.event); err == nil {
			return
		}
		p.logger.Warn("Event handling failed",
			zap.String("job_id", j.id),
			zap.String("kind", string(j.event.Kind)),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	p.logger.Error("Event dropped after retries",
		zap.String("job_id", j.id),
		zap.String("kind", string(j.event.Kind)),
		zap.Int64("docket_id", j.event.DocketID),
		zap.Int64("filing_id", j.event.FilingID),
		zap.Error(err),
	)
}
