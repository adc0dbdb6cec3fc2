package search

import (
	"context"

	"github.com/courtlens/docketdex/internal/db"
)

// mockStore is a functional mock of the store interface.
type mockStore struct {
	searchFn      func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}
