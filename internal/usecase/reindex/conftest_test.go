package reindex

import (
	"context"

	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

type mockSource struct {
	listDocketIDsFn func(ctx context.Context, afterID int64, limit int) ([]int64, error)
	getDocketFn     func(ctx context.Context, id int64) (domdocket.Docket, error)
	listFilingsFn   func(ctx context.Context, docketID int64) ([]domfiling.Filing, error)
}

func (m *mockSource) ListDocketIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return m.listDocketIDsFn(ctx, afterID, limit)
}

func (m *mockSource) GetDocket(ctx context.Context, id int64) (domdocket.Docket, error) {
	return m.getDocketFn(ctx, id)
}

func (m *mockSource) ListFilings(ctx context.Context, docketID int64) ([]domfiling.Filing, error) {
	if m.listFilingsFn == nil {
		return nil, nil
	}
	return m.listFilingsFn(ctx, docketID)
}

type mockIndexer struct {
	upsertDocketFn  func(ctx context.Context, d *domdocket.Docket) (bool, error)
	upsertFilingsFn func(ctx context.Context, filings []domfiling.Filing) error

	dockets []int64
	filings [][]domfiling.Filing
}

func (m *mockIndexer) UpsertDocket(ctx context.Context, d *domdocket.Docket) (bool, error) {
	m.dockets = append(m.dockets, d.ID)
	if m.upsertDocketFn != nil {
		return m.upsertDocketFn(ctx, d)
	}
	return true, nil
}

func (m *mockIndexer) UpsertFilings(ctx context.Context, filings []domfiling.Filing) error {
	m.filings = append(m.filings, filings)
	if m.upsertFilingsFn != nil {
		return m.upsertFilingsFn(ctx, filings)
	}
	return nil
}

type mockCheckpoints struct {
	recordFn func(ctx context.Context, searchType string, lastID int64) error
	lastFn   func(ctx context.Context, searchType string) (int64, bool, error)

	recorded []int64
}

func (m *mockCheckpoints) Record(ctx context.Context, searchType string, lastID int64) error {
	m.recorded = append(m.recorded, lastID)
	if m.recordFn != nil {
		return m.recordFn(ctx, searchType, lastID)
	}
	return nil
}

func (m *mockCheckpoints) Last(ctx context.Context, searchType string) (int64, bool, error) {
	if m.lastFn != nil {
		return m.lastFn(ctx, searchType)
	}
	return 0, false, nil
}
