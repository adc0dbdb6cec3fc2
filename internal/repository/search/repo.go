// Package search executes FT queries against the docket and filing
// indexes and maps raw result entries back to domain documents.
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/courtlens/docketdex/internal/db"
	"github.com/courtlens/docketdex/internal/domain"
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
	"github.com/courtlens/docketdex/internal/domain/search/hit"
	docketrepo "github.com/courtlens/docketdex/internal/repository/docket"
)

// store is the consumer interface for query execution (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo runs rendered queries and decodes scored documents.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchDockets runs a query against the docket index.
func (r *Repo) SearchDockets(ctx context.Context, p hit.Params) ([]hit.Docket, int, error) {
	res, err := r.run(ctx, docketrepo.DocketIndex(), p)
	if err != nil {
		return nil, 0, fmt.Errorf("search dockets: %w", err)
	}

	out := make([]hit.Docket, 0, len(res.Entries))
	for _, e := range res.Entries {
		var docs []domdocket.Docket
		if err := decodeEntry(e, &docs); err != nil {
			return nil, 0, err
		}
		if len(docs) == 0 {
			continue
		}
		out = append(out, hit.Docket{Docket: docs[0], Score: e.Score})
	}
	return out, res.Total, nil
}

// SearchFilings runs a query against the filing index.
func (r *Repo) SearchFilings(ctx context.Context, p hit.Params) ([]hit.Filing, int, error) {
	res, err := r.run(ctx, docketrepo.FilingIndex(), p)
	if err != nil {
		return nil, 0, fmt.Errorf("search filings: %w", err)
	}

	out := make([]hit.Filing, 0, len(res.Entries))
	for _, e := range res.Entries {
		var docs []domfiling.Filing
		if err := decodeEntry(e, &docs); err != nil {
			return nil, 0, err
		}
		if len(docs) == 0 {
			continue
		}
		out = append(out, hit.Filing{Filing: docs[0], Score: e.Score})
	}
	return out, res.Total, nil
}

// CountDockets returns the total docket hits of a query.
func (r *Repo) CountDockets(ctx context.Context, queryStr string) (int, error) {
	n, err := r.store.SearchCount(ctx, docketrepo.DocketIndex(), queryStr)
	if err != nil {
		return 0, fmt.Errorf("count dockets: %w", err)
	}
	return n, nil
}

// CountFilings returns the total filing hits of a query.
func (r *Repo) CountFilings(ctx context.Context, queryStr string) (int, error) {
	n, err := r.store.SearchCount(ctx, docketrepo.FilingIndex(), queryStr)
	if err != nil {
		return 0, fmt.Errorf("count filings: %w", err)
	}
	return n, nil
}

func (r *Repo) run(ctx context.Context, index string, p hit.Params) (*db.SearchResult, error) {
	if p.Query == "" {
		return nil, domain.NewBadQuery("query renders to no clauses", "")
	}
	dir := db.SortAsc
	if p.SortDesc {
		dir = db.SortDesc
	}
	res, err := r.store.Search(ctx, &db.TextQuery{
		IndexName:    index,
		Query:        p.Query,
		SortBy:       p.SortBy,
		SortDir:      dir,
		Offset:       p.Offset,
		Limit:        p.Limit,
		ReturnFields: []string{"$"},
		WithScores:   true,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &db.SearchResult{}, nil
	}
	return res, nil
}

func decodeEntry(e db.SearchEntry, dst any) error {
	raw, ok := e.Fields["$"]
	if !ok {
		return fmt.Errorf("entry %s has no document payload", e.Key)
	}
	// RETURN $ yields a bare object, JSON.GET style paths yield an array
	// wrapper. Normalize to the array form.
	if len(raw) > 0 && raw[0] != '[' {
		raw = "[" + raw + "]"
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode entry %s: %w", e.Key, err)
	}
	return nil
}
