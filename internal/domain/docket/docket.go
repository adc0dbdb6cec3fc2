// Package docket defines the parent document of the two-level record model.
package docket

// Denorm is the set of docket fields copied onto every filing of the docket.
// JSON names match the indexed attribute aliases on both levels.
type Denorm struct {
	CaseName         string   `json:"case_name"`
	CaseNameFull     string   `json:"case_name_full,omitempty"`
	DocketNumber     string   `json:"docket_number,omitempty"`
	CourtID          string   `json:"court_id"`
	Court            string   `json:"court,omitempty"`
	AssignedTo       string   `json:"assigned_to,omitempty"`
	AssignedToID     int64    `json:"assigned_to_id,omitempty"`
	ReferredTo       string   `json:"referred_to,omitempty"`
	ReferredToID     int64    `json:"referred_to_id,omitempty"`
	NatureOfSuit     string   `json:"nature_of_suit,omitempty"`
	Cause            string   `json:"cause,omitempty"`
	JuryDemand       string   `json:"jury_demand,omitempty"`
	JurisdictionType string   `json:"jurisdiction_type,omitempty"`
	DateFiled        int64    `json:"date_filed,omitempty"`
	DateArgued       int64    `json:"date_argued,omitempty"`
	DateTerminated   int64    `json:"date_terminated,omitempty"`
	Chapter          string   `json:"chapter,omitempty"`
	TrusteeStr       string   `json:"trustee_str,omitempty"`
	PartyNames       []string `json:"party,omitempty"`
	PartyIDs         []int64  `json:"party_id,omitempty"`
	AttorneyNames    []string `json:"attorney,omitempty"`
	AttorneyIDs      []int64  `json:"attorney_id,omitempty"`
	FirmNames        []string `json:"firm,omitempty"`
	FirmIDs          []int64  `json:"firm_id,omitempty"`
}

// Docket is the parent document. Dates are unix seconds, zero means unset.
// AssignedTo/ReferredTo hold the resolved judge display name; when the
// source has no judge entity the free-text *_str value is used instead.
type Docket struct {
	ID int64 `json:"id"`
	Denorm

	// AssignedToStr and ReferredToStr are the raw free-text judge strings
	// from the source record, kept for display-name fallback on rename.
	AssignedToStr string `json:"assigned_to_str,omitempty"`
	ReferredToStr string `json:"referred_to_str,omitempty"`

	PacerCaseID string `json:"pacer_case_id,omitempty"`
	DateCreated int64  `json:"date_created,omitempty"`

	// ViewCount is source-side bookkeeping. It is never indexed and
	// changes to it must produce no index writes.
	ViewCount int64 `json:"-"`
}

// DenormCopy returns the fields every child of this docket must carry.
func (d *Docket) DenormCopy() Denorm {
	return d.Denorm
}

// FieldClass describes how a source field change maps into the index.
type FieldClass int

const (
	// FieldIgnored changes produce no index writes.
	FieldIgnored FieldClass = iota
	// FieldParentOnly changes patch the docket document only.
	FieldParentOnly
	// FieldPropagates changes patch the docket and every filing under it.
	FieldPropagates
)

// propagating fields mirror the Denorm set; parties are excluded because
// party/attorney/firm recomputation is an explicit resync pass.
var propagatingFields = map[string]bool{
	"case_name":         true,
	"case_name_full":    true,
	"docket_number":     true,
	"court_id":          true,
	"court":             true,
	"assigned_to":       true,
	"assigned_to_id":    true,
	"assigned_to_str":   true,
	"referred_to":       true,
	"referred_to_id":    true,
	"referred_to_str":   true,
	"nature_of_suit":    true,
	"cause":             true,
	"jury_demand":       true,
	"jurisdiction_type": true,
	"date_filed":        true,
	"date_argued":       true,
	"date_terminated":   true,
	"chapter":           true,
	"trustee_str":       true,
}

var parentOnlyFields = map[string]bool{
	"pacer_case_id": true,
	"date_created":  true,
	"party":         true,
	"party_id":      true,
	"attorney":      true,
	"attorney_id":   true,
	"firm":          true,
	"firm_id":       true,
}

// Classify returns the index mapping class for a source field name.
// Unmapped fields (view_count, date_modified, ...) are ignored.
func Classify(field string) FieldClass {
	switch {
	case propagatingFields[field]:
		return FieldPropagates
	case parentOnlyFields[field]:
		return FieldParentOnly
	default:
		return FieldIgnored
	}
}

// Change partitions a changed-field list by index mapping class.
type Change struct {
	ParentOnly  []string
	Propagating []string
}

// ClassifyChange partitions fields; ignored fields are dropped.
func ClassifyChange(fields []string) Change {
	var c Change
	for _, f := range fields {
		switch Classify(f) {
		case FieldParentOnly:
			c.ParentOnly = append(c.ParentOnly, f)
		case FieldPropagates:
			c.Propagating = append(c.Propagating, f)
		case FieldIgnored:
		}
	}
	return c
}

// IsNoop reports whether the change requires no index writes at all.
func (c Change) IsNoop() bool {
	return len(c.ParentOnly) == 0 && len(c.Propagating) == 0
}

// Fields returns all mapped fields, parent-only first.
func (c Change) Fields() []string {
	out := make([]string, 0, len(c.ParentOnly)+len(c.Propagating))
	out = append(out, c.ParentOnly...)
	out = append(out, c.Propagating...)
	return out
}
