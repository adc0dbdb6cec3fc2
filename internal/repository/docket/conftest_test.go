package docket

import (
	"context"

	"github.com/courtlens/docketdex/internal/db"
)

// mockStore is a functional mock of the store interface. Tests set only
// the functions they care about.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn          func(ctx context.Context, key string) error
	delMultiFn     func(ctx context.Context, keys []string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	searchFn       func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) error {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
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

// mockIndexManager is a functional mock of the indexManager interface.
type mockIndexManager struct {
	createIndexFn func(ctx context.Context, idx *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockIndexManager) CreateIndex(ctx context.Context, idx *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, idx)
	}
	return nil
}

func (m *mockIndexManager) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}
