package docket

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtlens/docketdex/internal/db"
)

// indexManager is the consumer interface for index bootstrap (ISP).
type indexManager interface {
	CreateIndex(ctx context.Context, idx *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocketIndexDefinition builds the FT schema over docket documents.
// Date fields are stored as unix seconds so NUMERIC SORTABLE covers
// both range filters and ordering.
func DocketIndexDefinition() (*db.IndexDefinition, error) {
	return db.NewIndex(DocketIndex()).
		OnJSON().
		Prefix(docketKeyPrefix()).
		SortableNumeric("$.id", "id").
		Text("$.case_name", "case_name").
		Text("$.case_name_full", "case_name_full").
		Text("$.docket_number", "docket_number").
		Tag("$.court_id", "court_id").
		Text("$.court", "court").
		Text("$.assigned_to", "assigned_to").
		Numeric("$.assigned_to_id", "assigned_to_id").
		Text("$.referred_to", "referred_to").
		Numeric("$.referred_to_id", "referred_to_id").
		Text("$.nature_of_suit", "nature_of_suit").
		Text("$.cause", "cause").
		Text("$.jury_demand", "jury_demand").
		Text("$.jurisdiction_type", "jurisdiction_type").
		SortableNumeric("$.date_filed", "date_filed").
		SortableNumeric("$.date_argued", "date_argued").
		SortableNumeric("$.date_terminated", "date_terminated").
		Tag("$.chapter", "chapter").
		Text("$.trustee_str", "trustee_str").
		Text("$.party[*]", "party").
		Text("$.attorney[*]", "attorney").
		Text("$.firm[*]", "firm").
		Build()
}

// FilingIndexDefinition builds the FT schema over filing documents. Every
// docket field that filings denormalize is indexed here too, so a query
// touching both levels can be evaluated entirely at the filing level.
func FilingIndexDefinition() (*db.IndexDefinition, error) {
	return db.NewIndex(FilingIndex()).
		OnJSON().
		Prefix(filingKeyPrefix()).
		SortableNumeric("$.id", "id").
		Numeric("$.docket_id", "docket_id").
		Numeric("$.entry_number", "entry_number").
		SortableNumeric("$.entry_date_filed", "entry_date_filed").
		Text("$.entry_description", "entry_description").
		// document numbers are PACER strings ("28", "28-1"), never numeric
		Tag("$.document_number", "document_number").
		Numeric("$.attachment_number", "attachment_number").
		Tag("$.document_type", "document_type").
		Text("$.description", "description").
		Text("$.short_description", "short_description").
		Numeric("$.page_count", "page_count").
		Tag("$.is_available", "is_available").
		Text("$.plain_text", "plain_text").
		Tag("$.pacer_doc_id", "pacer_doc_id").
		// denormalized docket copy
		Text("$.case_name", "case_name").
		Text("$.case_name_full", "case_name_full").
		Text("$.docket_number", "docket_number").
		Tag("$.court_id", "court_id").
		Text("$.court", "court").
		Text("$.assigned_to", "assigned_to").
		Numeric("$.assigned_to_id", "assigned_to_id").
		Text("$.referred_to", "referred_to").
		Numeric("$.referred_to_id", "referred_to_id").
		Text("$.nature_of_suit", "nature_of_suit").
		Text("$.cause", "cause").
		Text("$.jury_demand", "jury_demand").
		Text("$.jurisdiction_type", "jurisdiction_type").
		SortableNumeric("$.date_filed", "date_filed").
		SortableNumeric("$.date_argued", "date_argued").
		SortableNumeric("$.date_terminated", "date_terminated").
		Tag("$.chapter", "chapter").
		Text("$.trustee_str", "trustee_str").
		Text("$.party[*]", "party").
		Text("$.attorney[*]", "attorney").
		Text("$.firm[*]", "firm").
		Build()
}

// EnsureIndexes creates both FT indexes if they do not exist yet.
func EnsureIndexes(ctx context.Context, m indexManager) error {
	defs := []func() (*db.IndexDefinition, error){
		DocketIndexDefinition,
		FilingIndexDefinition,
	}
	for _, build := range defs {
		def, err := build()
		if err != nil {
			return fmt.Errorf("build index definition: %w", err)
		}
		if err := m.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}
