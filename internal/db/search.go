package db

// SortDir is the sort direction for a TextQuery.
type SortDir string

const (
	// SortAsc sorts ascending.
	SortAsc SortDir = "ASC"
	// SortDesc sorts descending.
	SortDesc SortDir = "DESC"
)

// TextQuery is the input for an FT.SEARCH full-text/filter query.
// Query is a pre-built RediSearch query string.
type TextQuery struct {
	IndexName    string
	Query        string
	SortBy       string // field alias; empty means relevance order
	SortDir      SortDir
	Offset       int
	Limit        int
	ReturnFields []string
	WithScores   bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
