package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/domain"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
	"github.com/courtlens/docketdex/internal/domain/search/hit"
	"github.com/courtlens/docketdex/internal/domain/search/request"
)

func newTestService(m *mockSearcher) *Service {
	return New(m, zap.NewNop())
}

func bankruptcyDocket() hit.Docket {
	d := hit.Docket{Score: 1.0}
	d.ID = 42
	d.CaseName = "In re Lorem Holdings"
	d.DocketNumber = "1:21-bk-1234"
	d.CourtID = "nysb"
	d.Chapter = "11"
	return d
}

func amicusFiling() hit.Filing {
	f := hit.Filing{Score: 2.0}
	f.ID = 7
	f.DocketID = 42
	f.EntryNumber = 3
	f.EntryDateFiled = 1630000000
	f.DocumentNumber = "3"
	f.DocumentType = domfiling.TypePacerDocument
	f.Description = "Amicus Curiae Lorem"
	f.IsAvailable = true
	f.CaseName = "In re Lorem Holdings"
	f.DocketNumber = "1:21-bk-1234"
	f.CourtID = "nysb"
	return f
}

func TestSearch_BadQuerySurfaced(t *testing.T) {
	m := &mockSearcher{}
	svc := newTestService(m)

	req := mustRequest(t, "((", request.Cases, request.ParentFilters{}, request.ChildFilters{})
	_, err := svc.Search(context.Background(), &req)
	if !errors.Is(err, domain.ErrBadQuery) {
		t.Fatalf("error = %v, want ErrBadQuery", err)
	}
	if len(m.docketQueries)+len(m.filingQueries) != 0 {
		t.Error("malformed query must not reach the index")
	}
}

// The bankruptcy example: docket number as free text, a required
// description filter with available_only, grouped mode. One parent with
// one matching filing comes back.
func TestSearchGrouped_BankruptcyExample(t *testing.T) {
	m := &mockSearcher{
		searchFilingsFn: func(_ context.Context, p hit.Params) ([]hit.Filing, int, error) {
			return []hit.Filing{amicusFiling()}, 1, nil
		},
		searchDocketsFn: func(_ context.Context, p hit.Params) ([]hit.Docket, int, error) {
			return []hit.Docket{bankruptcyDocket()}, 1, nil
		},
		countFilingsFn: func(_ context.Context, query string) (int, error) {
			if strings.Contains(query, "@description:") {
				return 1, nil
			}
			return 3, nil // all filings of the docket
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "1:21-bk-1234", request.Cases,
		request.ParentFilters{},
		request.ChildFilters{Description: "Amicus Curiae Lorem", AvailableOnly: true})

	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.TotalParents != 1 || page.TotalChildren != 1 {
		t.Fatalf("totals = %d parents / %d children, want 1/1", page.TotalParents, page.TotalChildren)
	}
	if len(page.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(page.Rows))
	}

	row := page.Rows[0]
	if row.DocketID != 42 || row.DocketNumber != "1:21-bk-1234" {
		t.Errorf("unexpected row: %+v", row)
	}
	if len(row.InnerHits) != 1 {
		t.Fatalf("inner hits = %d, want 1", len(row.InnerHits))
	}
	if row.InnerHits[0].FilingID != 7 || !row.InnerHits[0].IsAvailable {
		t.Errorf("unexpected inner hit: %+v", row.InnerHits[0])
	}
	if row.MoreChildHits {
		t.Error("one matching filing must not set more_child_hits")
	}
	if row.ChildCount != 3 || row.MatchedChildCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", row.ChildCount, row.MatchedChildCount)
	}
}

func TestSearchGrouped_ChildFilterExcludesParent(t *testing.T) {
	m := &mockSearcher{
		searchDocketsFn: func(_ context.Context, _ hit.Params) ([]hit.Docket, int, error) {
			return []hit.Docket{bankruptcyDocket()}, 1, nil
		},
		searchFilingsFn: func(_ context.Context, _ hit.Params) ([]hit.Filing, int, error) {
			return nil, 0, nil // no filing matches the child clause
		},
		countFilingsFn: func(_ context.Context, _ string) (int, error) {
			return 0, nil // and none match the bare filters either
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "lorem", request.Cases,
		request.ParentFilters{},
		request.ChildFilters{AvailableOnly: true})

	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalParents != 0 || len(page.Rows) != 0 {
		t.Errorf("page = %+v, want no qualifying parents", page)
	}
}

func TestSearchGrouped_TextReachedViaChildOnly(t *testing.T) {
	var byIDsQuery string
	m := &mockSearcher{
		searchFilingsFn: func(_ context.Context, p hit.Params) ([]hit.Filing, int, error) {
			if strings.Contains(p.Query, "@plain_text:") && !strings.Contains(p.Query, "@docket_id:") {
				f := amicusFiling()
				f.PlainText = "the confidential annex"
				return []hit.Filing{f}, 1, nil
			}
			return []hit.Filing{amicusFiling()}, 1, nil
		},
		searchDocketsFn: func(_ context.Context, p hit.Params) ([]hit.Docket, int, error) {
			byIDsQuery = p.Query
			d := bankruptcyDocket()
			d.Score = 0
			return []hit.Docket{d}, 1, nil
		},
		countFilingsFn: func(_ context.Context, _ string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "plain_text:confidential", request.Cases,
		request.ParentFilters{}, request.ChildFilters{})

	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalParents != 1 || len(page.Rows) != 1 {
		t.Fatalf("page = %+v, want the child-matched parent", page)
	}
	// the parent was fetched by id, not by text
	if !strings.Contains(byIDsQuery, "@id:[42 42]") {
		t.Errorf("parent lookup query = %q", byIDsQuery)
	}
	if len(m.docketQueries) != 1 {
		t.Errorf("docket queries = %v, want the id lookup only", m.docketQueries)
	}
}

func TestSearchGrouped_RandomOrderStablePerSeed(t *testing.T) {
	dockets := func() []hit.Docket {
		var out []hit.Docket
		for _, id := range []int64{1, 2, 3, 4, 5} {
			d := hit.Docket{}
			d.ID = id
			d.CaseName = "Lorem"
			d.CourtID = "cand"
			out = append(out, d)
		}
		return out
	}
	newMock := func() *mockSearcher {
		return &mockSearcher{
			searchDocketsFn: func(_ context.Context, _ hit.Params) ([]hit.Docket, int, error) {
				return dockets(), 5, nil
			},
			countFilingsFn: func(_ context.Context, _ string) (int, error) {
				return 1, nil
			},
		}
	}

	run := func() []int64 {
		req, err := request.New("", request.Cases,
			request.ParentFilters{}, request.ChildFilters{}, "random_99", 1, 20)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		page, err := newTestService(newMock()).Search(context.Background(), &req)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		var ids []int64
		for _, r := range page.Rows {
			ids = append(ids, r.DocketID)
		}
		return ids
	}

	first, second := run(), run()
	if len(first) != 5 {
		t.Fatalf("rows = %d, want 5", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed gave different orders: %v vs %v", first, second)
		}
	}
}

func TestSearchGrouped_DateFiledOrdering(t *testing.T) {
	m := &mockSearcher{
		searchDocketsFn: func(_ context.Context, _ hit.Params) ([]hit.Docket, int, error) {
			var out []hit.Docket
			for _, v := range []struct{ id, filed int64 }{{1, 300}, {2, 100}, {3, 200}} {
				d := hit.Docket{}
				d.ID = v.id
				d.CaseName = "Lorem"
				d.CourtID = "cand"
				d.DateFiled = v.filed
				out = append(out, d)
			}
			return out, 3, nil
		},
		countFilingsFn: func(_ context.Context, _ string) (int, error) {
			return 0, nil
		},
	}
	svc := newTestService(m)

	req, err := request.New("", request.Cases,
		request.ParentFilters{}, request.ChildFilters{}, "date_filed asc", 1, 20)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var ids []int64
	for _, r := range page.Rows {
		ids = append(ids, r.DocketID)
	}
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 3 || ids[2] != 1 {
		t.Errorf("order = %v, want [2 3 1]", ids)
	}
}

func TestSearchGrouped_DisplayCapFlags(t *testing.T) {
	m := &mockSearcher{
		searchDocketsFn: func(_ context.Context, _ hit.Params) ([]hit.Docket, int, error) {
			return []hit.Docket{bankruptcyDocket()}, 1, nil
		},
		searchFilingsFn: func(_ context.Context, p hit.Params) ([]hit.Filing, int, error) {
			n := p.Limit
			out := make([]hit.Filing, 0, n)
			for i := 0; i < n; i++ {
				f := amicusFiling()
				f.ID = int64(i + 1)
				out = append(out, f)
			}
			return out, 150, nil
		},
		countFilingsFn: func(_ context.Context, _ string) (int, error) {
			return 150, nil
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "", request.Cases, request.ParentFilters{}, request.ChildFilters{})
	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := page.Rows[0]
	if len(row.InnerHits) != 5 {
		t.Errorf("inner hits = %d, want capped at 5", len(row.InnerHits))
	}
	if !row.MoreChildHits {
		t.Error("150 matches must set more_child_hits")
	}
	if !row.EntriesExceedViewMore {
		t.Error("150 entries must exceed view_more_child_hits")
	}
	if page.ChildCap != 5 {
		t.Errorf("child cap = %d, want 5", page.ChildCap)
	}
}

// A docket_id query is the "view more" path: the caller wants the full
// entry list of one case, so inner hits get the larger cap.
func TestSearchGrouped_DocketScopedViewMore(t *testing.T) {
	m := &mockSearcher{
		searchDocketsFn: func(_ context.Context, _ hit.Params) ([]hit.Docket, int, error) {
			return []hit.Docket{bankruptcyDocket()}, 1, nil
		},
		searchFilingsFn: func(_ context.Context, p hit.Params) ([]hit.Filing, int, error) {
			n := 150
			if p.Limit > 0 && p.Limit < n {
				n = p.Limit
			}
			out := make([]hit.Filing, 0, n)
			for i := 0; i < n; i++ {
				f := amicusFiling()
				f.ID = int64(i + 1)
				out = append(out, f)
			}
			return out, 150, nil
		},
		countFilingsFn: func(_ context.Context, _ string) (int, error) {
			return 150, nil
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "docket_id:42", request.Cases,
		request.ParentFilters{}, request.ChildFilters{})
	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(page.Rows))
	}
	row := page.Rows[0]
	if len(row.InnerHits) != 100 {
		t.Errorf("inner hits = %d, want the view-more cap of 100", len(row.InnerHits))
	}
	if page.ChildCap != 100 {
		t.Errorf("child cap = %d, want 100", page.ChildCap)
	}
	if !row.MoreChildHits {
		t.Error("150 entries must still set more_child_hits past the view-more cap")
	}
}

func TestSearchFlat(t *testing.T) {
	m := &mockSearcher{
		searchFilingsFn: func(_ context.Context, p hit.Params) ([]hit.Filing, int, error) {
			if p.Offset != 0 || p.Limit != 20 {
				t.Errorf("page = %d/%d, want 0/20", p.Offset, p.Limit)
			}
			f := amicusFiling()
			return []hit.Filing{f}, 37, nil
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "amicus", request.Documents,
		request.ParentFilters{Court: "nysb"}, request.ChildFilters{})

	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.TotalChildren != 37 {
		t.Errorf("total filings = %d, want 37", page.TotalChildren)
	}
	if len(page.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(page.Rows))
	}
	row := page.Rows[0]
	if row.Filing == nil || row.Filing.FilingID != 7 {
		t.Fatalf("flat row must embed its filing: %+v", row)
	}
	if len(row.InnerHits) != 0 {
		t.Error("flat rows carry no grouped inner hits")
	}
	// single child-index query, parent filters applied to the copy
	if len(m.filingQueries) != 1 || !strings.Contains(m.filingQueries[0], "@court_id:{nysb}") {
		t.Errorf("filing queries = %v", m.filingQueries)
	}
	if len(m.docketQueries) != 0 {
		t.Error("documents mode must not query the docket index")
	}
}

func TestSearchFlat_HighlightsAndSnippet(t *testing.T) {
	m := &mockSearcher{
		searchFilingsFn: func(_ context.Context, _ hit.Params) ([]hit.Filing, int, error) {
			f := amicusFiling()
			f.PlainText = "Background. The amicus brief argues that lorem ipsum dolor sit amet and more."
			return []hit.Filing{f}, 1, nil
		},
	}
	svc := newTestService(m)

	req := mustRequest(t, "amicus", request.Documents,
		request.ParentFilters{}, request.ChildFilters{})

	page, err := svc.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := page.Rows[0].Filing
	got := f.Highlights["description"]
	if len(got) != 1 || got[0] != "<mark>Amicus</mark> Curiae Lorem" {
		t.Errorf("description highlight = %v", got)
	}
	if !strings.HasPrefix(f.Snippet, "<mark>amicus</mark> brief argues") {
		t.Errorf("snippet = %q", f.Snippet)
	}
}
