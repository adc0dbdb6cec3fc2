package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDocketNotFound signals a missing docket document.
	ErrDocketNotFound = errors.New("docket not found")
	// ErrFilingNotFound signals a missing filing document.
	ErrFilingNotFound = errors.New("filing not found")
	// ErrBadQuery signals malformed advanced query syntax.
	ErrBadQuery = errors.New("bad query")
	// ErrBadOrder signals an unknown ordering key.
	ErrBadOrder = errors.New("bad order key")
	// ErrUnknownEventKind signals an unrecognized change-feed event.
	ErrUnknownEventKind = errors.New("unknown event kind")
	// ErrCheckpointCorrupt signals an unparsable checkpoint value.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")
)

// BadQueryError wraps ErrBadQuery with the offending fragment and a reason.
type BadQueryError struct {
	Fragment string
	Reason   string
}

func (e *BadQueryError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%s: %s", ErrBadQuery.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s near %q", ErrBadQuery.Error(), e.Reason, e.Fragment)
}

func (e *BadQueryError) Unwrap() error { return ErrBadQuery }

// NewBadQuery creates a query parse error.
func NewBadQuery(reason, fragment string) error {
	return &BadQueryError{Reason: reason, Fragment: fragment}
}
