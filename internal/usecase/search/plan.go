package search

import (
	"fmt"

	"github.com/courtlens/docketdex/internal/domain/search/query"
	"github.com/courtlens/docketdex/internal/domain/search/request"
	reposearch "github.com/courtlens/docketdex/internal/repository/search"
)

// Plan is a compiled search request: per-level query strings plus the
// flags the two-pass join branches on.
type Plan struct {
	Text *query.Query

	// HasText is set when the q string has at least one clause.
	HasText bool
	// HasChildFilters is set when any named filing-level filter is set.
	HasChildFilters bool
	// DocketScoped is set when q addresses docket_id directly. These are
	// the "view more" queries, served with the larger child hit cap.
	DocketScoped bool

	// ParentBase / ChildBase are the rendered named filters per level.
	ParentBase string
	ChildBase  string

	// ChildText is the full q rendered against the filing index; the
	// denormalized docket copy lets filings resolve every field.
	ChildText string
	// ParentText is q restricted to docket-visible fields. Empty plus
	// ParentTextNever means no docket can self-match the text.
	ParentText      string
	ParentTextNever bool
}

// BuildPlan parses the q string and renders the per-level queries.
// Malformed syntax surfaces domain.ErrBadQuery, never a match-all.
func BuildPlan(req *request.Request) (Plan, error) {
	q, err := query.Parse(req.Query())
	if err != nil {
		return Plan{}, fmt.Errorf("parse query: %w", err)
	}

	parent := req.Parent()
	child := req.Child()
	p := Plan{
		Text:            q,
		HasText:         !q.IsEmpty(),
		HasChildFilters: !child.IsZero(),
		DocketScoped:    q.ReferencesField("docket_id"),
		ParentBase:      reposearch.RenderParentFilters(&parent),
		ChildBase:       reposearch.RenderChildFilters(&child),
	}

	if p.HasText {
		p.ChildText = reposearch.RenderProjection(q.Project(query.LevelChild))
		parentProj := q.Project(query.LevelParent)
		if parentProj.Never {
			p.ParentTextNever = true
		} else {
			p.ParentText = reposearch.RenderProjection(parentProj)
		}
	}
	return p, nil
}

// HasChildClause reports whether any clause constrains filings.
func (p *Plan) HasChildClause() bool {
	return p.HasText || p.HasChildFilters
}

// ChildMatchQuery is the filing-level query of the join pass: named
// child filters AND the full text.
func (p *Plan) ChildMatchQuery() string {
	return reposearch.CombineClauses(p.ChildBase, p.ChildText)
}

// InnerHitQuery scopes the child clause to one docket. With no child
// clause at all it returns every filing of the docket.
func (p *Plan) InnerHitQuery(docketID int64) string {
	return reposearch.CombineClauses(p.ChildBase, p.ChildText, docketScope(docketID))
}

// ChildFilterQuery scopes the named child filters (without text) to one
// docket, for the required-filter membership check.
func (p *Plan) ChildFilterQuery(docketID int64) string {
	return reposearch.CombineClauses(p.ChildBase, docketScope(docketID))
}

// ParentQuery is the docket-level query of the self-match pass. Empty
// when text is present but unresolvable on the docket level.
func (p *Plan) ParentQuery() string {
	if p.HasText && p.ParentTextNever {
		return ""
	}
	return reposearch.CombineClauses(p.ParentBase, p.ParentText)
}

// ParentByIDsQuery fetches specific dockets while still enforcing the
// parent filters.
func (p *Plan) ParentByIDsQuery(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	idsClause := make([]byte, 0, len(ids)*12)
	idsClause = append(idsClause, '(')
	for i, id := range ids {
		if i > 0 {
			idsClause = append(idsClause, " | "...)
		}
		idsClause = fmt.Appendf(idsClause, "@id:[%d %d]", id, id)
	}
	idsClause = append(idsClause, ')')
	return reposearch.CombineClauses(p.ParentBase, string(idsClause))
}

// FlatQuery is the single filing-index query of documents mode: the
// parent filters apply directly to the denormalized copy.
func (p *Plan) FlatQuery() string {
	return reposearch.CombineClauses(p.ParentBase, p.ChildBase, p.ChildText)
}

func docketScope(docketID int64) string {
	return fmt.Sprintf("@docket_id:[%d %d]", docketID, docketID)
}
