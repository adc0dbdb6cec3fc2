package search

import (
	"context"

	"github.com/courtlens/docketdex/internal/domain/search/hit"
)

// Searcher defines the index query contract for search operations.
type Searcher interface {
	SearchDockets(ctx context.Context, p hit.Params) ([]hit.Docket, int, error)
	SearchFilings(ctx context.Context, p hit.Params) ([]hit.Filing, int, error)
	CountFilings(ctx context.Context, query string) (int, error)
}
