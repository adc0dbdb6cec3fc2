// Package search compiles validated requests into index queries, runs
// the two-pass parent/child join, and assembles result pages.
package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"

	"go.uber.org/zap"

	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
	"github.com/courtlens/docketdex/internal/domain/search/hit"
	"github.com/courtlens/docketdex/internal/domain/search/request"
	"github.com/courtlens/docketdex/internal/domain/search/result"
)

// parentIDChunk bounds one by-ids docket fetch.
const parentIDChunk = 50

// Service runs searches against the two-level index.
type Service struct {
	searcher Searcher
	logger   *zap.Logger

	childHitsPerResult int
	viewMoreChildHits  int
	maxJoinChildren    int
	noMatchHLSize      int
}

// New creates a search service with default display limits.
func New(searcher Searcher, logger *zap.Logger) *Service {
	return &Service{
		searcher:           searcher,
		logger:             logger,
		childHitsPerResult: 5,
		viewMoreChildHits:  100,
		maxJoinChildren:    10000,
		noMatchHLSize:      50,
	}
}

// WithLimits configures display caps and the join bound.
func (s *Service) WithLimits(childHits, viewMore, maxJoin, noMatchHL int) *Service {
	if childHits > 0 {
		s.childHitsPerResult = childHits
	}
	if viewMore > 0 {
		s.viewMoreChildHits = viewMore
	}
	if maxJoin > 0 {
		s.maxJoinChildren = maxJoin
	}
	if noMatchHL > 0 {
		s.noMatchHLSize = noMatchHL
	}
	return s
}

// Search runs a validated request and returns one result page.
func (s *Service) Search(ctx context.Context, req *request.Request) (*result.Page, error) {
	plan, err := BuildPlan(req)
	if err != nil {
		return nil, err
	}
	needles := collectNeedles(plan.Text)

	if req.Kind() == request.Documents {
		return s.searchFlat(ctx, req, &plan, needles)
	}
	return s.searchGrouped(ctx, req, &plan, needles)
}

// searchFlat is documents mode: one row per matching filing from a
// single filing-index query. Parent filters apply to the denormalized
// copy directly.
func (s *Service) searchFlat(
	ctx context.Context, req *request.Request, plan *Plan, needles []needle,
) (*result.Page, error) {
	q := plan.FlatQuery()
	ord := req.Order()

	var (
		hits  []hit.Filing
		total int
		err   error
	)
	switch ord.Key {
	case request.OrderRandom:
		hits, total, err = s.searcher.SearchFilings(ctx, hit.Params{
			Query: q,
			Limit: s.maxJoinChildren,
		})
		if err == nil {
			seed := ord.Seed
			sort.Slice(hits, func(i, j int) bool {
				ki := shuffleKey(seed, hits[i].DocketID, hits[i].ID)
				kj := shuffleKey(seed, hits[j].DocketID, hits[j].ID)
				return ki < kj
			})
			hits = pageSlice(hits, req.Offset(), req.PageSize())
		}
	case request.OrderScore:
		hits, total, err = s.searcher.SearchFilings(ctx, hit.Params{
			Query:  q,
			Offset: req.Offset(),
			Limit:  req.PageSize(),
		})
	default:
		hits, total, err = s.searcher.SearchFilings(ctx, hit.Params{
			Query:    q,
			SortBy:   string(ord.Key),
			SortDesc: ord.Desc,
			Offset:   req.Offset(),
			Limit:    req.PageSize(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("documents search: %w", err)
	}

	rows := make([]result.Row, 0, len(hits))
	for i := range hits {
		h := &hits[i]
		row := rowFromDenorm(h.DocketID, &h.Denorm)
		row.Score = h.Score
		row.Highlights = highlightDocket(&h.Denorm, needles)
		inner := s.innerHit(&h.Filing, h.Score, needles)
		row.Filing = &inner
		rows = append(rows, row)
	}

	return &result.Page{
		Rows:          rows,
		TotalChildren: total,
		ChildCap:      s.childHitsPerResult,
	}, nil
}

// aggStats accumulates per-docket child-match data from the join pass.
type aggStats struct {
	best     float64
	maxEntry int64
	minEntry int64
}

// candidate is a docket being considered for inclusion.
type candidate struct {
	docket     hit.Docket
	selfText   bool
	inChildAgg bool
	childBest  float64
	childMax   int64
	childMin   int64
	matched    int
	sortKey    float64
}

// searchGrouped is cases mode: the two-pass join. A docket is included
// iff its own filters match, its required child filters are satisfied by
// at least one filing, and the free text matches the docket itself or
// one of its filings.
func (s *Service) searchGrouped(
	ctx context.Context, req *request.Request, plan *Plan, needles []needle,
) (*result.Page, error) {
	agg, err := s.joinChildren(ctx, plan)
	if err != nil {
		return nil, err
	}

	cands, err := s.gatherCandidates(ctx, plan, agg)
	if err != nil {
		return nil, err
	}

	included, totalChildren, err := s.applyInclusion(ctx, plan, cands)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Join resolved",
		zap.Int("candidates", len(cands)),
		zap.Int("parents", len(included)),
		zap.Int("filings", totalChildren),
	)

	if err := s.orderCandidates(ctx, req.Order(), included); err != nil {
		return nil, err
	}

	paged := pageSlice(included, req.Offset(), req.PageSize())
	rows := make([]result.Row, 0, len(paged))
	for _, c := range paged {
		row, err := s.assembleRow(ctx, plan, req.Order(), c, needles)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &result.Page{
		Rows:          rows,
		TotalParents:  len(included),
		TotalChildren: totalChildren,
		ChildCap:      s.childCap(plan),
	}, nil
}

// childCap is the per-row inner hit cap in effect. Queries scoped to a
// docket via docket_id get the view-more cap so the full entry list of
// one case can be paged through.
func (s *Service) childCap(plan *Plan) int {
	if plan.DocketScoped {
		return s.viewMoreChildHits
	}
	return s.childHitsPerResult
}

// joinChildren runs the filing-level pass and aggregates hits by docket.
func (s *Service) joinChildren(ctx context.Context, plan *Plan) (map[int64]*aggStats, error) {
	if !plan.HasChildClause() {
		return nil, nil
	}

	hits, _, err := s.searcher.SearchFilings(ctx, hit.Params{
		Query: plan.ChildMatchQuery(),
		Limit: s.maxJoinChildren,
	})
	if err != nil {
		return nil, fmt.Errorf("child join pass: %w", err)
	}

	agg := make(map[int64]*aggStats)
	for i := range hits {
		h := &hits[i]
		a, ok := agg[h.DocketID]
		if !ok {
			a = &aggStats{best: h.Score, maxEntry: h.EntryDateFiled, minEntry: h.EntryDateFiled}
			agg[h.DocketID] = a
			continue
		}
		if h.Score > a.best {
			a.best = h.Score
		}
		if h.EntryDateFiled > a.maxEntry {
			a.maxEntry = h.EntryDateFiled
		}
		if h.EntryDateFiled < a.minEntry {
			a.minEntry = h.EntryDateFiled
		}
	}
	return agg, nil
}

// gatherCandidates collects dockets from the self-match pass and from
// the child join, always enforcing the parent filters.
func (s *Service) gatherCandidates(
	ctx context.Context, plan *Plan, agg map[int64]*aggStats,
) (map[int64]*candidate, error) {
	cands := make(map[int64]*candidate)

	if pq := plan.ParentQuery(); pq != "" {
		docs, _, err := s.searcher.SearchDockets(ctx, hit.Params{
			Query: pq,
			Limit: s.maxJoinChildren,
		})
		if err != nil {
			return nil, fmt.Errorf("parent pass: %w", err)
		}
		for _, d := range docs {
			cands[d.ID] = &candidate{docket: d, selfText: plan.HasText}
		}
	}

	var missing []int64
	for id := range agg {
		if _, ok := cands[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })

	for start := 0; start < len(missing); start += parentIDChunk {
		end := start + parentIDChunk
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]
		docs, _, err := s.searcher.SearchDockets(ctx, hit.Params{
			Query: plan.ParentByIDsQuery(chunk),
			Limit: len(chunk),
		})
		if err != nil {
			return nil, fmt.Errorf("parent lookup for child matches: %w", err)
		}
		for _, d := range docs {
			cands[d.ID] = &candidate{docket: d}
		}
	}

	for id, c := range cands {
		if a, ok := agg[id]; ok {
			c.inChildAgg = true
			c.childBest = a.best
			c.childMax = a.maxEntry
			c.childMin = a.minEntry
		}
	}
	return cands, nil
}

// applyInclusion drops candidates that fail the required child filters
// or the cross-level text requirement, and totals matched children.
func (s *Service) applyInclusion(
	ctx context.Context, plan *Plan, cands map[int64]*candidate,
) ([]*candidate, int, error) {
	ids := make([]int64, 0, len(cands))
	for id := range cands {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var included []*candidate
	totalChildren := 0
	for _, id := range ids {
		c := cands[id]

		if plan.HasText && !c.selfText && !c.inChildAgg {
			continue
		}
		if plan.HasChildFilters && !c.inChildAgg {
			n, err := s.searcher.CountFilings(ctx, plan.ChildFilterQuery(id))
			if err != nil {
				return nil, 0, fmt.Errorf("child filter check for docket %d: %w", id, err)
			}
			if n == 0 {
				continue
			}
		}

		n, err := s.searcher.CountFilings(ctx, plan.InnerHitQuery(id))
		if err != nil {
			return nil, 0, fmt.Errorf("matched child count for docket %d: %w", id, err)
		}
		c.matched = n
		totalChildren += n
		included = append(included, c)
	}
	return included, totalChildren, nil
}

// orderCandidates sorts included parents per the requested ordering.
func (s *Service) orderCandidates(ctx context.Context, ord request.Order, included []*candidate) error {
	for _, c := range included {
		switch ord.Key {
		case request.OrderScore:
			blended := c.childBest
			if c.selfText {
				blended += c.docket.Score
			}
			c.sortKey = blended
		case request.OrderRandom:
			c.sortKey = float64(shuffleKey(ord.Seed, c.docket.ID, 0))
		case request.OrderDateFiled:
			c.sortKey = float64(c.docket.DateFiled)
		case request.OrderEntryDateFiled:
			if c.inChildAgg {
				if ord.Desc {
					c.sortKey = float64(c.childMax)
				} else {
					c.sortKey = float64(c.childMin)
				}
			} else {
				v, err := s.bestEntryDate(ctx, c.docket.ID, ord.Desc)
				if err != nil {
					return err
				}
				c.sortKey = float64(v)
			}
		}
	}

	sort.SliceStable(included, func(i, j int) bool {
		a, b := included[i], included[j]
		if a.sortKey != b.sortKey {
			if ord.Desc {
				return a.sortKey > b.sortKey
			}
			return a.sortKey < b.sortKey
		}
		return a.docket.ID > b.docket.ID
	})
	return nil
}

// bestEntryDate fetches the extreme entry_date_filed of a docket's
// filings when the join pass has no value for it.
func (s *Service) bestEntryDate(ctx context.Context, docketID int64, desc bool) (int64, error) {
	hits, _, err := s.searcher.SearchFilings(ctx, hit.Params{
		Query:    fmt.Sprintf("@docket_id:[%d %d]", docketID, docketID),
		SortBy:   "entry_date_filed",
		SortDesc: desc,
		Limit:    1,
	})
	if err != nil {
		return 0, fmt.Errorf("entry date for docket %d: %w", docketID, err)
	}
	if len(hits) == 0 {
		return 0, nil
	}
	return hits[0].EntryDateFiled, nil
}

// assembleRow builds one grouped result row with its inner hits.
func (s *Service) assembleRow(
	ctx context.Context, plan *Plan, ord request.Order, c *candidate, needles []needle,
) (result.Row, error) {
	id := c.docket.ID
	row := rowFromDenorm(id, &c.docket.Denorm)
	row.Score = c.sortKey
	if ord.Key != request.OrderScore {
		blended := c.childBest
		if c.selfText {
			blended += c.docket.Score
		}
		row.Score = blended
	}
	row.Highlights = highlightDocket(&c.docket.Denorm, needles)

	totalKids := c.matched
	if plan.HasChildClause() {
		n, err := s.searcher.CountFilings(ctx, fmt.Sprintf("@docket_id:[%d %d]", id, id))
		if err != nil {
			return result.Row{}, fmt.Errorf("child count for docket %d: %w", id, err)
		}
		totalKids = n
	}

	limit := s.childCap(plan)
	params := hit.Params{
		Query: plan.InnerHitQuery(id),
		Limit: limit,
	}
	if ord.Key == request.OrderEntryDateFiled {
		params.SortBy = "entry_date_filed"
		params.SortDesc = ord.Desc
	}
	hits, _, err := s.searcher.SearchFilings(ctx, params)
	if err != nil {
		return result.Row{}, fmt.Errorf("inner hits for docket %d: %w", id, err)
	}

	row.InnerHits = make([]result.InnerHit, 0, len(hits))
	for i := range hits {
		row.InnerHits = append(row.InnerHits, s.innerHit(&hits[i].Filing, hits[i].Score, needles))
	}
	row.ChildCount = totalKids
	row.MatchedChildCount = c.matched
	row.MoreChildHits = c.matched > limit
	row.EntriesExceedViewMore = totalKids > s.viewMoreChildHits
	return row, nil
}

func (s *Service) innerHit(f *domfiling.Filing, score float64, needles []needle) result.InnerHit {
	h := result.InnerHit{
		FilingID:         f.ID,
		DocketID:         f.DocketID,
		EntryNumber:      f.EntryNumber,
		EntryDateFiled:   f.EntryDateFiled,
		DocumentNumber:   f.DocumentNumber,
		AttachmentNumber: f.AttachmentNumber,
		DocumentType:     f.DocumentType,
		Description:      f.Description,
		ShortDescription: f.ShortDescription,
		PageCount:        f.PageCount,
		IsAvailable:      f.IsAvailable,
		FilepathLocal:    f.FilepathLocal,
		Score:            score,
	}
	h.Highlights = highlightFiling(f, needles)
	if f.PlainText != "" {
		h.Snippet = textSnippet(f.PlainText, needlesFor(needles, "plain_text"), s.noMatchHLSize)
	}
	return h
}

func rowFromDenorm(docketID int64, d *domdocket.Denorm) result.Row {
	return result.Row{
		DocketID:         docketID,
		CaseName:         d.CaseName,
		CaseNameFull:     d.CaseNameFull,
		DocketNumber:     d.DocketNumber,
		CourtID:          d.CourtID,
		Court:            d.Court,
		AssignedTo:       d.AssignedTo,
		ReferredTo:       d.ReferredTo,
		NatureOfSuit:     d.NatureOfSuit,
		Cause:            d.Cause,
		JuryDemand:       d.JuryDemand,
		JurisdictionType: d.JurisdictionType,
		DateFiled:        d.DateFiled,
		DateArgued:       d.DateArgued,
		DateTerminated:   d.DateTerminated,
		Chapter:          d.Chapter,
		TrusteeStr:       d.TrusteeStr,
	}
}

// docket display fields eligible for term highlighting
var docketHighlightFields = []struct {
	name string
	get  func(*domdocket.Denorm) string
}{
	{"case_name", func(d *domdocket.Denorm) string { return d.CaseName }},
	{"case_name_full", func(d *domdocket.Denorm) string { return d.CaseNameFull }},
	{"docket_number", func(d *domdocket.Denorm) string { return d.DocketNumber }},
	{"assigned_to", func(d *domdocket.Denorm) string { return d.AssignedTo }},
	{"referred_to", func(d *domdocket.Denorm) string { return d.ReferredTo }},
	{"cause", func(d *domdocket.Denorm) string { return d.Cause }},
	{"nature_of_suit", func(d *domdocket.Denorm) string { return d.NatureOfSuit }},
}

func highlightDocket(d *domdocket.Denorm, needles []needle) result.Highlight {
	var h result.Highlight
	for _, f := range docketHighlightFields {
		v := f.get(d)
		if v == "" {
			continue
		}
		marked, ok := markMatches(v, needlesFor(needles, f.name))
		if !ok {
			continue
		}
		if h == nil {
			h = result.Highlight{}
		}
		h[f.name] = append(h[f.name], marked)
	}
	return h
}

var filingHighlightFields = []struct {
	name string
	get  func(*domfiling.Filing) string
}{
	{"description", func(f *domfiling.Filing) string { return f.Description }},
	{"short_description", func(f *domfiling.Filing) string { return f.ShortDescription }},
	{"entry_description", func(f *domfiling.Filing) string { return f.EntryDescription }},
}

func highlightFiling(f *domfiling.Filing, needles []needle) result.Highlight {
	var h result.Highlight
	for _, fld := range filingHighlightFields {
		v := fld.get(f)
		if v == "" {
			continue
		}
		marked, ok := markMatches(v, needlesFor(needles, fld.name))
		if !ok {
			continue
		}
		if h == nil {
			h = result.Highlight{}
		}
		h[fld.name] = append(h[fld.name], marked)
	}
	return h
}

// shuffleKey is the seed-stable random ordering key. The same seed and
// docket always hash to the same slot.
func shuffleKey(seed uint64, docketID, filingID int64) uint64 {
	h := fnv.New64a()
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[:8], seed)
	binary.BigEndian.PutUint64(buf[8:16], uint64(docketID))
	binary.BigEndian.PutUint64(buf[16:], uint64(filingID))
	h.Write(buf[:])
	return h.Sum64()
}

func pageSlice[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
