package search

import (
	"fmt"
	"strings"

	"github.com/courtlens/docketdex/internal/db"
	"github.com/courtlens/docketdex/internal/domain/search/query"
	"github.com/courtlens/docketdex/internal/domain/search/request"
)

// RenderProjection renders a projected query tree to RediSearch syntax.
// An Always projection renders "*", a Never projection renders "" (the
// caller must not run a search for it).
func RenderProjection(p query.Projection) string {
	if p.Never {
		return ""
	}
	if p.Always || p.Root == nil {
		return "*"
	}
	return renderNode(p.Root)
}

func renderNode(n query.Node) string {
	switch v := n.(type) {
	case *query.Term:
		return renderTerm(v)
	case *query.Range:
		return renderRange(v)
	case *query.Not:
		return "-(" + renderNode(v.Child) + ")"
	case *query.Bool:
		parts := make([]string, 0, len(v.Children))
		for _, c := range v.Children {
			s := renderNode(c)
			if _, nested := c.(*query.Bool); nested {
				s = "(" + s + ")"
			}
			parts = append(parts, s)
		}
		if v.Op == query.OpOr {
			return "(" + strings.Join(parts, " | ") + ")"
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func renderTerm(t *query.Term) string {
	if t.Field == "" {
		if t.Phrase {
			return `"` + t.Text + `"`
		}
		return db.EscapeTerm(t.Text)
	}

	fi, _ := query.LookupField(t.Field)
	switch fi.Kind {
	case query.KindTag:
		return "@" + t.Field + ":{" + db.EscapeTag(t.Text) + "}"
	case query.KindNumeric:
		return "@" + t.Field + ":[" + t.Text + " " + t.Text + "]"
	default:
		if t.Phrase {
			return "@" + t.Field + `:"` + t.Text + `"`
		}
		return "@" + t.Field + ":(" + db.EscapeTerm(t.Text) + ")"
	}
}

func renderRange(r *query.Range) string {
	lo, hi := r.Lo, r.Hi
	if lo == "*" {
		lo = "-inf"
	}
	if hi == "*" {
		hi = "+inf"
	}
	return "@" + r.Field + ":[" + lo + " " + hi + "]"
}

// RenderParentFilters renders the named docket-level filters as required
// clauses. Returns "" when no filter is set.
func RenderParentFilters(f *request.ParentFilters) string {
	if f.IsZero() {
		return ""
	}
	var parts []string
	addText(&parts, "case_name", f.CaseName)
	addText(&parts, "docket_number", f.DocketNumber)
	addTag(&parts, "court_id", f.Court)
	addText(&parts, "assigned_to", f.AssignedTo)
	addText(&parts, "referred_to", f.ReferredTo)
	addText(&parts, "nature_of_suit", f.NatureOfSuit)
	addText(&parts, "cause", f.Cause)
	addText(&parts, "party", f.PartyName)
	addText(&parts, "attorney", f.AttyName)
	addText(&parts, "firm", f.Firm)
	if f.FiledAfter != 0 || f.FiledBefore != 0 {
		lo, hi := "-inf", "+inf"
		if f.FiledAfter != 0 {
			lo = fmt.Sprintf("%d", f.FiledAfter)
		}
		if f.FiledBefore != 0 {
			hi = fmt.Sprintf("%d", f.FiledBefore)
		}
		parts = append(parts, fmt.Sprintf("@date_filed:[%s %s]", lo, hi))
	}
	return strings.Join(parts, " ")
}

// RenderChildFilters renders the named filing-level filters as required
// clauses. Returns "" when no filter is set.
func RenderChildFilters(f *request.ChildFilters) string {
	if f.IsZero() {
		return ""
	}
	var parts []string
	addText(&parts, "description", f.Description)
	addTag(&parts, "document_number", f.DocumentNumber)
	if f.AttachmentNumber != nil {
		n := *f.AttachmentNumber
		parts = append(parts, fmt.Sprintf("@attachment_number:[%d %d]", n, n))
	}
	if f.AvailableOnly {
		parts = append(parts, "@is_available:{true}")
	}
	addTag(&parts, "pacer_doc_id", f.PacerDocID)
	return strings.Join(parts, " ")
}

// CombineClauses joins rendered clause groups with AND semantics,
// skipping empties and the match-all marker when other clauses exist.
func CombineClauses(clauses ...string) string {
	var kept []string
	for _, c := range clauses {
		if c == "" || c == "*" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return "*"
	}
	return strings.Join(kept, " ")
}

func addText(parts *[]string, field, value string) {
	if value == "" {
		return
	}
	words := strings.Fields(value)
	for i, w := range words {
		words[i] = db.EscapeTerm(w)
	}
	*parts = append(*parts, "@"+field+":("+strings.Join(words, " ")+")")
}

func addTag(parts *[]string, field, value string) {
	if value == "" {
		return
	}
	*parts = append(*parts, "@"+field+":{"+db.EscapeTag(value)+"}")
}
