// Package reindex rebuilds the search index from the system of record
// in checkpointed batches, resumable after interruption.
package reindex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/domain"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// Stats summarizes one reindex run.
type Stats struct {
	Dockets int
	Filings int
	LastID  int64
}

// Service is the batch reindexer.
type Service struct {
	source      Source
	indexer     Indexer
	checkpoints Checkpoints
	logger      *zap.Logger
}

// New creates a reindexer.
func New(source Source, indexer Indexer, checkpoints Checkpoints, logger *zap.Logger) *Service {
	return &Service{
		source:      source,
		indexer:     indexer,
		checkpoints: checkpoints,
		logger:      logger,
	}
}

// Run walks docket ids after the stored checkpoint, indexing the parent
// and its filings in bulk, and records progress after each batch. An
// interrupted run resumes from the checkpoint and reprocesses at most
// one batch.
func (s *Service) Run(ctx context.Context, searchType string, batchSize int) (Stats, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	afterID, resumed, err := s.checkpoints.Last(ctx, searchType)
	if err != nil {
		return Stats{}, fmt.Errorf("read checkpoint: %w", err)
	}
	if resumed {
		s.logger.Info("Resuming reindex",
			zap.String("search_type", searchType),
			zap.Int64("after_id", afterID),
		)
	}

	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ids, err := s.source.ListDocketIDs(ctx, afterID, batchSize)
		if err != nil {
			return stats, fmt.Errorf("list dockets after %d: %w", afterID, err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			n, err := s.indexDocket(ctx, id)
			if err != nil {
				return stats, err
			}
			if n >= 0 {
				stats.Dockets++
				stats.Filings += n
			}
		}

		afterID = ids[len(ids)-1]
		stats.LastID = afterID
		if err := s.checkpoints.Record(ctx, searchType, afterID); err != nil {
			return stats, fmt.Errorf("record checkpoint: %w", err)
		}

		s.logger.Info("Reindex batch done",
			zap.String("search_type", searchType),
			zap.Int64("last_id", afterID),
			zap.Int("dockets", stats.Dockets),
			zap.Int("filings", stats.Filings),
		)
	}
	return stats, nil
}

// indexDocket writes one docket and its filings. Returns the filing
// count, or -1 when the docket vanished from the source mid-run.
func (s *Service) indexDocket(ctx context.Context, id int64) (int, error) {
	d, err := s.source.GetDocket(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return -1, nil
		}
		return 0, fmt.Errorf("source docket %d: %w", id, err)
	}

	if _, err := s.indexer.UpsertDocket(ctx, &d); err != nil {
		return 0, fmt.Errorf("index docket %d: %w", id, err)
	}

	filings, err := s.source.ListFilings(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("source filings of docket %d: %w", id, err)
	}
	denorm := d.DenormCopy()
	for i := range filings {
		filings[i].ApplyDenorm(denorm)
		filings[i].DocumentType = domfiling.DocType(filings[i].AttachmentNumber)
	}
	if err := s.indexer.UpsertFilings(ctx, filings); err != nil {
		return 0, fmt.Errorf("index filings of docket %d: %w", id, err)
	}
	return len(filings), nil
}
