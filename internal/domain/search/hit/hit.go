// Package hit defines raw index hits shared between the search
// repository and the result assembler.
package hit

import (
	"github.com/courtlens/docketdex/internal/domain/docket"
	"github.com/courtlens/docketdex/internal/domain/filing"
)

// Params shape one index query. SortBy empty means relevance order.
type Params struct {
	Query    string
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

// Docket is a docket hit with its relevance score.
type Docket struct {
	docket.Docket
	Score float64
}

// Filing is a filing hit with its relevance score.
type Filing struct {
	filing.Filing
	Score float64
}
