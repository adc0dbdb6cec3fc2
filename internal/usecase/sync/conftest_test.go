package sync

import (
	"context"

	"github.com/courtlens/docketdex/internal/domain"
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// mockRepo is a functional mock of the Repository interface.
type mockRepo struct {
	upsertDocketFn         func(ctx context.Context, d *domdocket.Docket) (bool, error)
	docketExistsFn         func(ctx context.Context, id int64) (bool, error)
	patchDocketFn          func(ctx context.Context, id int64, fields map[string]any) error
	deleteDocketFn         func(ctx context.Context, id int64) error
	docketIDsByJudgeFn     func(ctx context.Context, judgeID int64) ([]int64, error)
	upsertFilingFn         func(ctx context.Context, f *domfiling.Filing) (bool, error)
	patchFilingFn          func(ctx context.Context, id int64, fields map[string]any) error
	deleteFilingFn         func(ctx context.Context, id int64) error
	patchFilingsByDocketFn func(ctx context.Context, docketID int64, fields map[string]any) error
	deleteFilingsFn        func(ctx context.Context, docketID int64) error

	calls []string
}

func (m *mockRepo) UpsertDocket(ctx context.Context, d *domdocket.Docket) (bool, error) {
	m.calls = append(m.calls, "UpsertDocket")
	if m.upsertDocketFn != nil {
		return m.upsertDocketFn(ctx, d)
	}
	return true, nil
}

func (m *mockRepo) DocketExists(ctx context.Context, id int64) (bool, error) {
	m.calls = append(m.calls, "DocketExists")
	if m.docketExistsFn != nil {
		return m.docketExistsFn(ctx, id)
	}
	return false, nil
}

func (m *mockRepo) PatchDocket(ctx context.Context, id int64, fields map[string]any) error {
	m.calls = append(m.calls, "PatchDocket")
	if m.patchDocketFn != nil {
		return m.patchDocketFn(ctx, id, fields)
	}
	return nil
}

func (m *mockRepo) DeleteDocket(ctx context.Context, id int64) error {
	m.calls = append(m.calls, "DeleteDocket")
	if m.deleteDocketFn != nil {
		return m.deleteDocketFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) DocketIDsByJudge(ctx context.Context, judgeID int64) ([]int64, error) {
	m.calls = append(m.calls, "DocketIDsByJudge")
	if m.docketIDsByJudgeFn != nil {
		return m.docketIDsByJudgeFn(ctx, judgeID)
	}
	return nil, nil
}

func (m *mockRepo) UpsertFiling(ctx context.Context, f *domfiling.Filing) (bool, error) {
	m.calls = append(m.calls, "UpsertFiling")
	if m.upsertFilingFn != nil {
		return m.upsertFilingFn(ctx, f)
	}
	return true, nil
}

func (m *mockRepo) PatchFiling(ctx context.Context, id int64, fields map[string]any) error {
	m.calls = append(m.calls, "PatchFiling")
	if m.patchFilingFn != nil {
		return m.patchFilingFn(ctx, id, fields)
	}
	return nil
}

func (m *mockRepo) DeleteFiling(ctx context.Context, id int64) error {
	m.calls = append(m.calls, "DeleteFiling")
	if m.deleteFilingFn != nil {
		return m.deleteFilingFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) PatchFilingsByDocket(ctx context.Context, docketID int64, fields map[string]any) error {
	m.calls = append(m.calls, "PatchFilingsByDocket")
	if m.patchFilingsByDocketFn != nil {
		return m.patchFilingsByDocketFn(ctx, docketID, fields)
	}
	return nil
}

func (m *mockRepo) DeleteFilingsByDocket(ctx context.Context, docketID int64) error {
	m.calls = append(m.calls, "DeleteFilingsByDocket")
	if m.deleteFilingsFn != nil {
		return m.deleteFilingsFn(ctx, docketID)
	}
	return nil
}

// mockSource is a functional mock of the Source interface. Defaults
// report records as gone from the source.
type mockSource struct {
	getDocketFn  func(ctx context.Context, id int64) (domdocket.Docket, error)
	getFilingFn  func(ctx context.Context, id int64) (domfiling.Filing, error)
	getPartiesFn func(ctx context.Context, docketID int64) (domdocket.Parties, error)
}

func (m *mockSource) GetDocket(ctx context.Context, id int64) (domdocket.Docket, error) {
	if m.getDocketFn != nil {
		return m.getDocketFn(ctx, id)
	}
	return domdocket.Docket{}, domain.ErrDocketNotFound
}

func (m *mockSource) GetFiling(ctx context.Context, id int64) (domfiling.Filing, error) {
	if m.getFilingFn != nil {
		return m.getFilingFn(ctx, id)
	}
	return domfiling.Filing{}, domain.ErrFilingNotFound
}

func (m *mockSource) GetParties(ctx context.Context, docketID int64) (domdocket.Parties, error) {
	if m.getPartiesFn != nil {
		return m.getPartiesFn(ctx, docketID)
	}
	return domdocket.Parties{}, domain.ErrDocketNotFound
}
