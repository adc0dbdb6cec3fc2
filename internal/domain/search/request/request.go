// Package request defines the validated search request aggregate.
package request

import (
	"fmt"
)

// Kind selects the result shape.
type Kind string

// Result shapes.
const (
	// Cases groups results one row per docket with inner filing hits.
	Cases Kind = "cases"
	// Documents returns one flat row per matching filing.
	Documents Kind = "documents"
)

// IsValid checks the kind against the supported values.
func (k Kind) IsValid() bool { return k == Cases || k == Documents }

// Pagination limits.
const (
	MaxQueryLength  = 4096
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParentFilters are named filters resolved on the docket level.
type ParentFilters struct {
	Court        string
	CaseName     string
	DocketNumber string
	AssignedTo   string
	ReferredTo   string
	NatureOfSuit string
	Cause        string
	PartyName    string
	AttyName     string
	Firm         string
	// FiledAfter/FiledBefore bound date_filed, unix seconds, 0 = open.
	FiledAfter  int64
	FiledBefore int64
}

// IsZero reports whether no parent filter is set.
func (f *ParentFilters) IsZero() bool {
	return *f == ParentFilters{}
}

// ChildFilters are named filters resolved on the filing level. They are
// required clauses: a docket qualifies only via filings matching all of
// them.
type ChildFilters struct {
	Description    string
	DocumentNumber string
	// AttachmentNumber filters to a specific attachment slot.
	AttachmentNumber *int64
	AvailableOnly    bool
	PacerDocID       string
}

// IsZero reports whether no child filter is set.
func (f *ChildFilters) IsZero() bool {
	return f.Description == "" && f.DocumentNumber == "" &&
		f.AttachmentNumber == nil && !f.AvailableOnly && f.PacerDocID == ""
}

// Request is a validated search request.
type Request struct {
	query    string
	kind     Kind
	parent   ParentFilters
	child    ChildFilters
	order    Order
	page     int
	pageSize int
}

// New validates and normalizes search parameters. Defaults: kind=cases,
// order=score desc, pageSize=20 (clamped to 100). The query string is
// not parsed here; the search service parses it and surfaces syntax
// errors.
func New(
	q string,
	kind Kind,
	parent ParentFilters,
	child ChildFilters,
	orderBy string,
	page, pageSize int,
) (Request, error) {
	if len(q) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if kind == "" {
		kind = Cases
	}
	if !kind.IsValid() {
		return Request{}, fmt.Errorf("invalid result kind: %q", kind)
	}
	order, err := ParseOrder(orderBy)
	if err != nil {
		return Request{}, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Request{
		query:    q,
		kind:     kind,
		parent:   parent,
		child:    child,
		order:    order,
		page:     page,
		pageSize: pageSize,
	}, nil
}

// Query returns the free-text q string (may be empty).
func (r *Request) Query() string { return r.query }

// Kind returns the result shape.
func (r *Request) Kind() Kind { return r.kind }

// Parent returns the parent-level filters.
func (r *Request) Parent() ParentFilters { return r.parent }

// Child returns the child-level filters.
func (r *Request) Child() ChildFilters { return r.child }

// Order returns the parsed ordering.
func (r *Request) Order() Order { return r.order }

// Page returns the 1-based result page.
func (r *Request) Page() int { return r.page }

// PageSize returns the rows per page.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the row offset for the current page.
func (r *Request) Offset() int { return (r.page - 1) * r.pageSize }
