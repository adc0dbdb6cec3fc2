// Package query parses the advanced search syntax (boolean operators,
// phrases, fielded terms, ranges) into an AST scoped to document levels.
package query

// Level is the document level a field lives on.
type Level int

const (
	// LevelBoth fields are denormalized onto children, so they resolve
	// on either level.
	LevelBoth Level = iota
	// LevelParent fields exist on the docket document only.
	LevelParent
	// LevelChild fields exist on the filing document only.
	LevelChild
)

// FieldKind is the index attribute type of a queryable field.
type FieldKind int

const (
	// KindText fields take terms and phrases.
	KindText FieldKind = iota
	// KindTag fields take exact values.
	KindTag
	// KindNumeric fields take values and [a TO b] ranges.
	KindNumeric
)

// FieldInfo describes a field addressable with field:value syntax.
type FieldInfo struct {
	Level Level
	Kind  FieldKind
}

// fields addressable in the q string. Denormalized docket fields resolve
// on both levels; filing-only fields resolve on the child level.
var fields = map[string]FieldInfo{
	"case_name":         {LevelBoth, KindText},
	"case_name_full":    {LevelBoth, KindText},
	"docket_number":     {LevelBoth, KindText},
	"court_id":          {LevelBoth, KindTag},
	"court":             {LevelBoth, KindText},
	"assigned_to":       {LevelBoth, KindText},
	"referred_to":       {LevelBoth, KindText},
	"nature_of_suit":    {LevelBoth, KindText},
	"cause":             {LevelBoth, KindText},
	"jury_demand":       {LevelBoth, KindText},
	"jurisdiction_type": {LevelBoth, KindText},
	"chapter":           {LevelBoth, KindTag},
	"trustee_str":       {LevelBoth, KindText},
	"party":             {LevelBoth, KindText},
	"attorney":          {LevelBoth, KindText},
	"firm":              {LevelBoth, KindText},
	"date_filed":        {LevelBoth, KindNumeric},
	"date_argued":       {LevelBoth, KindNumeric},
	"date_terminated":   {LevelBoth, KindNumeric},

	"description":       {LevelChild, KindText},
	"short_description": {LevelChild, KindText},
	"entry_description": {LevelChild, KindText},
	"plain_text":        {LevelChild, KindText},
	"document_type":     {LevelChild, KindTag},
	"pacer_doc_id":      {LevelChild, KindTag},
	"docket_id":         {LevelChild, KindNumeric},
	"document_number":   {LevelChild, KindTag},
	"attachment_number": {LevelChild, KindNumeric},
	"entry_number":      {LevelChild, KindNumeric},
	"entry_date_filed":  {LevelChild, KindNumeric},
	"page_count":        {LevelChild, KindNumeric},
	"is_available":      {LevelChild, KindTag},
}

// LookupField returns field info for a q-addressable field name.
func LookupField(name string) (FieldInfo, bool) {
	fi, ok := fields[name]
	return fi, ok
}

// BoolOp is a boolean combinator.
type BoolOp int

const (
	// OpAnd requires all children.
	OpAnd BoolOp = iota
	// OpOr requires at least one child.
	OpOr
)

// Node is an AST node. Exactly one of the concrete types below.
type Node interface{ isNode() }

// Term is a free-text term or quoted phrase. Field is empty for
// unscoped text, which matches the default text fields on both levels.
type Term struct {
	Text   string
	Phrase bool
	Field  string
}

// Bool combines child nodes with AND or OR.
type Bool struct {
	Op       BoolOp
	Children []Node
}

// Not excludes its child (does not score down).
type Not struct {
	Child Node
}

// Range is field:[lo TO hi]. Open bounds use "*".
type Range struct {
	Field string
	Lo    string
	Hi    string
}

func (*Term) isNode()  {}
func (*Bool) isNode()  {}
func (*Not) isNode()   {}
func (*Range) isNode() {}

// Query is a parsed q string.
type Query struct {
	Root Node // nil for an empty query
}

// IsEmpty reports whether the query has no clauses.
func (q *Query) IsEmpty() bool { return q == nil || q.Root == nil }

// levelOf returns the level a node's field resolves on. Unscoped terms
// are LevelBoth.
func levelOf(n Node) Level {
	switch v := n.(type) {
	case *Term:
		if v.Field == "" {
			return LevelBoth
		}
		fi, _ := LookupField(v.Field)
		return fi.Level
	case *Range:
		fi, _ := LookupField(v.Field)
		return fi.Level
	}
	return LevelBoth
}

// ReferencesField reports whether any clause addresses the named field
// with field:value syntax.
func (q *Query) ReferencesField(name string) bool {
	if q.IsEmpty() {
		return false
	}
	return references(q.Root, name)
}

func references(n Node, name string) bool {
	switch v := n.(type) {
	case *Term:
		return v.Field == name
	case *Range:
		return v.Field == name
	case *Bool:
		for _, c := range v.Children {
			if references(c, name) {
				return true
			}
		}
	case *Not:
		return references(v.Child, name)
	}
	return false
}

// TouchesLevel reports whether any clause in the query references the
// given level (directly or via a LevelBoth field).
func (q *Query) TouchesLevel(l Level) bool {
	if q.IsEmpty() {
		return false
	}
	return touches(q.Root, l)
}

func touches(n Node, l Level) bool {
	switch v := n.(type) {
	case *Term, *Range:
		nl := levelOf(n)
		return nl == l || nl == LevelBoth
	case *Bool:
		for _, c := range v.Children {
			if touches(c, l) {
				return true
			}
		}
	case *Not:
		return touches(v.Child, l)
	}
	return false
}
