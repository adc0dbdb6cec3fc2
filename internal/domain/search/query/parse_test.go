package query

import (
	"errors"
	"testing"

	"github.com/courtlens/docketdex/internal/domain"
)

func TestParse_Empty(t *testing.T) {
	q, err := Parse("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsEmpty() {
		t.Error("expected empty query")
	}
}

func TestParse_SingleTerm(t *testing.T) {
	q, err := Parse("lorem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := q.Root.(*Term)
	if !ok {
		t.Fatalf("expected Term, got %T", q.Root)
	}
	if term.Text != "lorem" || term.Phrase || term.Field != "" {
		t.Errorf("unexpected term: %+v", term)
	}
}

func TestParse_Phrase(t *testing.T) {
	q, err := Parse(`"Amicus Curiae Lorem"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := q.Root.(*Term)
	if !ok {
		t.Fatalf("expected Term, got %T", q.Root)
	}
	if term.Text != "Amicus Curiae Lorem" || !term.Phrase {
		t.Errorf("unexpected term: %+v", term)
	}
}

func TestParse_ImplicitAnd(t *testing.T) {
	q, err := Parse("lorem ipsum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := q.Root.(*Bool)
	if !ok || b.Op != OpAnd {
		t.Fatalf("expected AND Bool, got %#v", q.Root)
	}
	if len(b.Children) != 2 {
		t.Errorf("children = %d, want 2", len(b.Children))
	}
}

func TestParse_ExplicitBooleans(t *testing.T) {
	q, err := Parse("lorem AND ipsum OR dolor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := q.Root.(*Bool)
	if !ok || b.Op != OpOr {
		t.Fatalf("expected OR at top, got %#v", q.Root)
	}
	if len(b.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(b.Children))
	}
	left, ok := b.Children[0].(*Bool)
	if !ok || left.Op != OpAnd {
		t.Errorf("expected AND left branch, got %#v", b.Children[0])
	}
}

func TestParse_Not(t *testing.T) {
	q, err := Parse("lorem NOT ipsum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := q.Root.(*Bool)
	if !ok || b.Op != OpAnd {
		t.Fatalf("expected AND, got %#v", q.Root)
	}
	if _, ok := b.Children[1].(*Not); !ok {
		t.Errorf("expected NOT child, got %#v", b.Children[1])
	}
}

func TestParse_Fielded(t *testing.T) {
	q, err := Parse("description:motion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := q.Root.(*Term)
	if !ok {
		t.Fatalf("expected Term, got %T", q.Root)
	}
	if term.Field != "description" || term.Text != "motion" {
		t.Errorf("unexpected term: %+v", term)
	}
}

func TestParse_FieldedPhrase(t *testing.T) {
	q, err := Parse(`case_name:"SEC v. Frank"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term := q.Root.(*Term)
	if term.Field != "case_name" || !term.Phrase {
		t.Errorf("unexpected term: %+v", term)
	}
}

func TestParse_FieldGroup(t *testing.T) {
	q, err := Parse("party:(apple samsung)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := q.Root.(*Bool)
	if !ok || b.Op != OpAnd || len(b.Children) != 2 {
		t.Fatalf("expected AND of 2, got %#v", q.Root)
	}
	for _, c := range b.Children {
		if c.(*Term).Field != "party" {
			t.Errorf("expected party field, got %+v", c)
		}
	}
}

func TestParse_Range(t *testing.T) {
	q, err := Parse("entry_date_filed:[1609459200 TO 1640995200]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := q.Root.(*Range)
	if !ok {
		t.Fatalf("expected Range, got %T", q.Root)
	}
	if r.Lo != "1609459200" || r.Hi != "1640995200" {
		t.Errorf("unexpected bounds: %+v", r)
	}
}

func TestParse_OpenRange(t *testing.T) {
	q, err := Parse("page_count:[10 TO *]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := q.Root.(*Range)
	if r.Lo != "10" || r.Hi != "*" {
		t.Errorf("unexpected bounds: %+v", r)
	}
}

func TestParse_DocketNumberIsNotAField(t *testing.T) {
	// a colon inside a docket number must not be treated as field syntax
	q, err := Parse("1:21-bk-1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := q.Root.(*Term)
	if !ok || term.Field != "" {
		t.Fatalf("expected unscoped term, got %#v", q.Root)
	}
}

func TestParse_DocketScope(t *testing.T) {
	// docket_id:<id> is how callers request the full entry list of one
	// case, so it must be addressable in q.
	q, err := Parse("docket_id:1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	term, ok := q.Root.(*Term)
	if !ok || term.Field != "docket_id" || term.Text != "1234" {
		t.Fatalf("unexpected node: %#v", q.Root)
	}
	if !q.ReferencesField("docket_id") {
		t.Error("expected docket_id reference")
	}
}

func TestReferencesField(t *testing.T) {
	q, err := Parse("motion NOT (docket_id:7 OR sealed)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.ReferencesField("docket_id") {
		t.Error("expected nested docket_id reference")
	}
	if q.ReferencesField("court_id") {
		t.Error("unexpected court_id reference")
	}
}

func TestParse_Parens(t *testing.T) {
	q, err := Parse("(lorem OR ipsum) AND dolor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := q.Root.(*Bool)
	if !ok || b.Op != OpAnd {
		t.Fatalf("expected AND at top, got %#v", q.Root)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    string
	}{
		{"unbalanced quote", `"lorem ipsum`},
		{"unbalanced bracket", "date_filed:[1 TO 2"},
		{"stray close bracket", "lorem]"},
		{"unbalanced paren", "(lorem"},
		{"dangling AND", "lorem AND"},
		{"leading OR", "OR lorem"},
		{"dangling NOT", "lorem NOT"},
		{"unknown field", "flavor:vanilla"},
		{"field without value", "description:"},
		{"range on text field", "description:[a TO b]"},
		{"malformed range", "page_count:[1 2]"},
		{"fieldless range", "[1 TO 2]"},
		{"empty field group", "party:()"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.q)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tc.q)
			}
			if !errors.Is(err, domain.ErrBadQuery) {
				t.Errorf("Parse(%q): error %v is not ErrBadQuery", tc.q, err)
			}
		})
	}
}

func TestTouchesLevel(t *testing.T) {
	q, err := Parse("description:motion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TouchesLevel(LevelParent) {
		t.Error("child-only field should not touch parent level")
	}
	if !q.TouchesLevel(LevelChild) {
		t.Error("expected child level touch")
	}

	q, _ = Parse("lorem")
	if !q.TouchesLevel(LevelParent) || !q.TouchesLevel(LevelChild) {
		t.Error("unscoped text touches both levels")
	}
}
