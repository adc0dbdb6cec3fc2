// Package event defines the change-feed contract between the system of
// record and the index synchronizer.
package event

import (
	"fmt"

	"github.com/courtlens/docketdex/internal/domain"
)

// Kind is the change-feed event type.
type Kind string

// Change-feed event kinds.
const (
	DocketSaved       Kind = "docket_saved"
	DocketDeleted     Kind = "docket_deleted"
	FilingSaved       Kind = "filing_saved"
	FilingChanged     Kind = "filing_changed"
	FilingDeleted     Kind = "filing_deleted"
	JudgeSaved        Kind = "judge_saved"
	BankruptcySaved   Kind = "bankruptcy_saved"
	BankruptcyDeleted Kind = "bankruptcy_deleted"
	PartiesResync     Kind = "parties_resync"
)

// IsValid checks the kind against the supported set.
func (k Kind) IsValid() bool {
	switch k {
	case DocketSaved, DocketDeleted, FilingSaved, FilingChanged, FilingDeleted,
		JudgeSaved, BankruptcySaved, BankruptcyDeleted, PartiesResync:
		return true
	}
	return false
}

// Event is one on-commit mutation notification. Which id field is set
// depends on the kind; ChangedFields carries source field names for
// saved/changed kinds and is empty for creates and deletes.
type Event struct {
	Kind          Kind     `json:"kind"`
	DocketID      int64    `json:"docket_id,omitempty"`
	FilingID      int64    `json:"filing_id,omitempty"`
	JudgeID       int64    `json:"judge_id,omitempty"`
	ChangedFields []string `json:"changed_fields,omitempty"`
}

// Validate checks the event shape for the declared kind.
func (e *Event) Validate() error {
	if !e.Kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEventKind, e.Kind)
	}
	switch e.Kind {
	case FilingSaved, FilingChanged, FilingDeleted:
		if e.FilingID == 0 {
			return fmt.Errorf("filing_id is required for %s", e.Kind)
		}
	case JudgeSaved:
		if e.JudgeID == 0 {
			return fmt.Errorf("judge_id is required for %s", e.Kind)
		}
	default:
		if e.DocketID == 0 {
			return fmt.Errorf("docket_id is required for %s", e.Kind)
		}
	}
	return nil
}
