package sync

import (
	"context"

	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// Repository defines the index storage contract for the synchronizer.
type Repository interface {
	UpsertDocket(ctx context.Context, d *domdocket.Docket) (created bool, err error)
	DocketExists(ctx context.Context, id int64) (bool, error)
	PatchDocket(ctx context.Context, id int64, fields map[string]any) error
	DeleteDocket(ctx context.Context, id int64) error
	DocketIDsByJudge(ctx context.Context, judgeID int64) ([]int64, error)

	UpsertFiling(ctx context.Context, f *domfiling.Filing) (created bool, err error)
	PatchFiling(ctx context.Context, id int64, fields map[string]any) error
	DeleteFiling(ctx context.Context, id int64) error
	PatchFilingsByDocket(ctx context.Context, docketID int64, fields map[string]any) error
	DeleteFilingsByDocket(ctx context.Context, docketID int64) error
}

// Source reads fresh records from the system of record. Implementations
// return domain.ErrDocketNotFound / domain.ErrFilingNotFound for records
// deleted since the event was emitted.
type Source interface {
	GetDocket(ctx context.Context, id int64) (domdocket.Docket, error)
	GetFiling(ctx context.Context, id int64) (domfiling.Filing, error)
	GetParties(ctx context.Context, docketID int64) (domdocket.Parties, error)
}
