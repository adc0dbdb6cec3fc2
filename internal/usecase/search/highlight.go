package search

import (
	"sort"
	"strings"

	"github.com/courtlens/docketdex/internal/domain/search/query"
)

// markOpen/markClose wrap matched terms in display fields.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// snippetWindow bounds the matched-text snippet length in runes.
const snippetWindow = 200

// needle is one highlightable term. Field is empty for unscoped text.
type needle struct {
	field string
	text  string
}

// collectNeedles walks the positive clauses of a parsed query and
// returns the text terms worth highlighting. NOT subtrees and tag or
// numeric fields are skipped.
func collectNeedles(q *query.Query) []needle {
	if q.IsEmpty() {
		return nil
	}
	var out []needle
	var walk func(n query.Node)
	walk = func(n query.Node) {
		switch v := n.(type) {
		case *query.Term:
			if v.Field != "" {
				fi, ok := query.LookupField(v.Field)
				if !ok || fi.Kind != query.KindText {
					return
				}
			}
			if v.Text != "" {
				out = append(out, needle{field: v.Field, text: v.Text})
			}
		case *query.Bool:
			for _, c := range v.Children {
				walk(c)
			}
		case *query.Not:
			// excluded terms never appear in results
		}
	}
	walk(q.Root)
	return out
}

// needlesFor returns the needle texts applicable to one display field.
func needlesFor(needles []needle, field string) []string {
	var out []string
	for _, n := range needles {
		if n.field == "" || n.field == field {
			out = append(out, n.text)
		}
	}
	return out
}

// markMatches wraps case-insensitive occurrences of the needles in the
// value. The second result reports whether anything matched.
func markMatches(value string, needles []string) (string, bool) {
	if value == "" || len(needles) == 0 {
		return value, false
	}

	lower := strings.ToLower(value)
	type span struct{ start, end int }
	var spans []span
	for _, n := range needles {
		ln := strings.ToLower(n)
		if ln == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(lower[from:], ln)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, span{start, start + len(ln)})
			from = start + len(ln)
		}
	}
	if len(spans) == 0 {
		return value, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}

	var b strings.Builder
	prev := 0
	for _, sp := range merged {
		b.WriteString(value[prev:sp.start])
		b.WriteString(markOpen)
		b.WriteString(value[sp.start:sp.end])
		b.WriteString(markClose)
		prev = sp.end
	}
	b.WriteString(value[prev:])
	return b.String(), true
}

// textSnippet extracts a marked fragment of long text. With no match the
// snippet is the head of the text truncated to noMatchLen runes.
func textSnippet(text string, needles []string, noMatchLen int) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	first := -1
	for _, n := range needles {
		ln := strings.ToLower(n)
		if ln == "" {
			continue
		}
		if i := strings.Index(lower, ln); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}

	if first < 0 {
		return truncateRunes(text, noMatchLen)
	}

	window := truncateRunes(text[first:], snippetWindow)
	marked, _ := markMatches(window, needles)
	return marked
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
