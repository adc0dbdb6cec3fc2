// Package filing defines the child document: one per filing or attachment.
package filing

import (
	"fmt"

	"github.com/courtlens/docketdex/internal/domain/docket"
)

// Document type values.
const (
	TypePacerDocument = "PACER Document"
	TypeAttachment    = "Attachment"
)

// Filing is the child document. It carries its own fields plus a
// denormalized copy of the parent docket (embedded, flattened in JSON).
// Dates are unix seconds, zero means unset.
type Filing struct {
	ID       int64 `json:"id"`
	DocketID int64 `json:"docket_id"`

	EntryNumber      int64  `json:"entry_number,omitempty"`
	EntryDateFiled   int64  `json:"entry_date_filed,omitempty"`
	EntryDescription string `json:"entry_description,omitempty"`

	DocumentNumber string `json:"document_number,omitempty"`
	// AttachmentNumber is nil for a main document, set for an attachment.
	AttachmentNumber *int64 `json:"attachment_number,omitempty"`
	DocumentType     string `json:"document_type"`

	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	PageCount        int64  `json:"page_count,omitempty"`
	IsAvailable      bool   `json:"is_available"`
	PlainText        string `json:"plain_text,omitempty"`
	PacerDocID       string `json:"pacer_doc_id,omitempty"`
	FilepathLocal    string `json:"filepath_local,omitempty"`

	docket.Denorm
}

// DocType derives the document type from the attachment number.
func DocType(attachmentNumber *int64) string {
	if attachmentNumber == nil {
		return TypePacerDocument
	}
	return TypeAttachment
}

// NumberLabel is the display label "<doc>" or "<doc>-<att>".
func (f *Filing) NumberLabel() string {
	if f.AttachmentNumber == nil {
		return f.DocumentNumber
	}
	return fmt.Sprintf("%s-%d", f.DocumentNumber, *f.AttachmentNumber)
}

// ApplyDenorm replaces the denormalized parent copy.
func (f *Filing) ApplyDenorm(d docket.Denorm) {
	f.Denorm = d
}

// These filing source fields map one-to-one onto indexed attributes;
// anything else in a change event is dropped from the patch.
var mappedFields = map[string]bool{
	"entry_number":      true,
	"entry_date_filed":  true,
	"entry_description": true,
	"document_number":   true,
	"attachment_number": true,
	"document_type":     true,
	"description":       true,
	"short_description": true,
	"page_count":        true,
	"is_available":      true,
	"plain_text":        true,
	"pacer_doc_id":      true,
	"filepath_local":    true,
}

// MappedFields filters a changed-field list down to indexed attributes.
func MappedFields(fields []string) []string {
	var out []string
	for _, f := range fields {
		if mappedFields[f] {
			out = append(out, f)
		}
	}
	return out
}
