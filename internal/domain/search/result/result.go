// Package result defines the assembled search response shapes.
package result

// Highlight maps a field name to its marked-up fragments.
type Highlight map[string][]string

// InnerHit is a filing returned under its docket row (grouped mode) or
// as the row itself (flat mode).
type InnerHit struct {
	FilingID         int64     `json:"id"`
	DocketID         int64     `json:"docket_id"`
	EntryNumber      int64     `json:"entry_number,omitempty"`
	EntryDateFiled   int64     `json:"entry_date_filed,omitempty"`
	DocumentNumber   string    `json:"document_number,omitempty"`
	AttachmentNumber *int64    `json:"attachment_number,omitempty"`
	DocumentType     string    `json:"document_type"`
	Description      string    `json:"description,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
	PageCount        int64     `json:"page_count,omitempty"`
	IsAvailable      bool      `json:"is_available"`
	FilepathLocal    string    `json:"filepath_local,omitempty"`
	Score            float64   `json:"score"`
	Snippet          string    `json:"snippet,omitempty"`
	Highlights       Highlight `json:"highlights,omitempty"`
}

// Row is one result row: a docket in grouped mode, a filing (with its
// denormalized docket fields) in flat mode.
type Row struct {
	DocketID         int64  `json:"docket_id"`
	CaseName         string `json:"case_name"`
	CaseNameFull     string `json:"case_name_full,omitempty"`
	DocketNumber     string `json:"docket_number,omitempty"`
	CourtID          string `json:"court_id"`
	Court            string `json:"court,omitempty"`
	AssignedTo       string `json:"assigned_to,omitempty"`
	ReferredTo       string `json:"referred_to,omitempty"`
	NatureOfSuit     string `json:"nature_of_suit,omitempty"`
	Cause            string `json:"cause,omitempty"`
	JuryDemand       string `json:"jury_demand,omitempty"`
	JurisdictionType string `json:"jurisdiction_type,omitempty"`
	DateFiled        int64  `json:"date_filed,omitempty"`
	DateArgued       int64  `json:"date_argued,omitempty"`
	DateTerminated   int64  `json:"date_terminated,omitempty"`
	Chapter          string `json:"chapter,omitempty"`
	TrusteeStr       string `json:"trustee_str,omitempty"`

	Score      float64   `json:"score"`
	Highlights Highlight `json:"highlights,omitempty"`

	// Grouped mode only.
	ChildCount        int        `json:"entry_count,omitempty"`
	MatchedChildCount int        `json:"matched_entry_count,omitempty"`
	InnerHits         []InnerHit `json:"filings,omitempty"`
	// MoreChildHits is set when matches exceed the per-row display cap.
	MoreChildHits bool `json:"more_child_hits,omitempty"`
	// EntriesExceedViewMore is set when the docket's total entry count
	// exceeds the view-more threshold. Independent of MoreChildHits.
	EntriesExceedViewMore bool `json:"entries_exceed_view_more,omitempty"`

	// Flat mode only.
	Filing *InnerHit `json:"filing,omitempty"`
}

// Page is the assembled response: ordered rows plus the three
// reconciliation numbers.
type Page struct {
	Rows []Row `json:"results"`
	// TotalParents is the number of matching dockets. Documents mode
	// computes no case count, so the field is absent there rather than
	// a zero a consumer could read as "no cases".
	TotalParents int `json:"total_cases,omitempty"`
	// TotalChildren is the number of matching filings across them.
	TotalChildren int `json:"total_filings"`
	// ChildCap is the per-row inner hit display cap in effect.
	ChildCap int `json:"child_cap"`
}
