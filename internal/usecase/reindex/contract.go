package reindex

import (
	"context"

	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// Source streams records from the system of record in id order.
type Source interface {
	ListDocketIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	GetDocket(ctx context.Context, id int64) (domdocket.Docket, error)
	ListFilings(ctx context.Context, docketID int64) ([]domfiling.Filing, error)
}

// Indexer writes documents to the search index.
type Indexer interface {
	UpsertDocket(ctx context.Context, d *domdocket.Docket) (created bool, err error)
	UpsertFilings(ctx context.Context, filings []domfiling.Filing) error
}

// Checkpoints tracks reindex progress per search type.
type Checkpoints interface {
	Record(ctx context.Context, searchType string, lastID int64) error
	Last(ctx context.Context, searchType string) (int64, bool, error)
}
