package search

import (
	"context"

	"github.com/courtlens/docketdex/internal/domain/search/hit"
)

// mockSearcher is a functional mock of the Searcher interface. Tests
// route on the query string to serve the different passes.
type mockSearcher struct {
	searchDocketsFn func(ctx context.Context, p hit.Params) ([]hit.Docket, int, error)
	searchFilingsFn func(ctx context.Context, p hit.Params) ([]hit.Filing, int, error)
	countFilingsFn  func(ctx context.Context, query string) (int, error)

	docketQueries []string
	filingQueries []string
	countQueries  []string
}

func (m *mockSearcher) SearchDockets(ctx context.Context, p hit.Params) ([]hit.Docket, int, error) {
	m.docketQueries = append(m.docketQueries, p.Query)
	if m.searchDocketsFn != nil {
		return m.searchDocketsFn(ctx, p)
	}
	return nil, 0, nil
}

func (m *mockSearcher) SearchFilings(ctx context.Context, p hit.Params) ([]hit.Filing, int, error) {
	m.filingQueries = append(m.filingQueries, p.Query)
	if m.searchFilingsFn != nil {
		return m.searchFilingsFn(ctx, p)
	}
	return nil, 0, nil
}

func (m *mockSearcher) CountFilings(ctx context.Context, query string) (int, error) {
	m.countQueries = append(m.countQueries, query)
	if m.countFilingsFn != nil {
		return m.countFilingsFn(ctx, query)
	}
	return 0, nil
}
