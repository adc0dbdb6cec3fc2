// Package checkpoint persists batch-reindex progress: the last docket id
// processed, keyed by search type. Last-write-wins, no history.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/courtlens/docketdex/internal/db"
	"github.com/courtlens/docketdex/internal/domain"
)

// store is the consumer interface for checkpoint operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store implements usecase/reindex.Checkpoints.
type Store struct {
	store store
}

// New creates a checkpoint store.
func New(s store) *Store {
	return &Store{store: s}
}

// Record overwrites the checkpoint for the given search type.
func (s *Store) Record(ctx context.Context, searchType string, lastID int64) error {
	k := key(searchType)
	if err := s.store.Set(ctx, k, []byte(strconv.FormatInt(lastID, 10))); err != nil {
		return fmt.Errorf("checkpoint set %s: %w", k, err)
	}
	return nil
}

// Last returns the recorded checkpoint. An absent key is the
// start-from-beginning sentinel (0, false), not an error.
func (s *Store) Last(ctx context.Context, searchType string) (int64, bool, error) {
	k := key(searchType)
	data, err := s.store.Get(ctx, k)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("checkpoint get %s: %w", k, err)
	}

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q", domain.ErrCheckpointCorrupt, k, data)
	}
	return id, true, nil
}

func key(searchType string) string {
	return fmt.Sprintf("%sreindex:%s:last_id", domain.KeyPrefix, searchType)
}
