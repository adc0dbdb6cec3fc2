package sync

import (
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// docketPatch builds an index patch from fresh docket values for the
// given source field names. Zero values clear the attribute so stale
// data never lingers after a source field is blanked.
func docketPatch(d *domdocket.Docket, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "case_name":
			out[f] = strOrNil(d.CaseName)
		case "case_name_full":
			out[f] = strOrNil(d.CaseNameFull)
		case "docket_number":
			out[f] = strOrNil(d.DocketNumber)
		case "court_id":
			out[f] = strOrNil(d.CourtID)
		case "court":
			out[f] = strOrNil(d.Court)
		case "assigned_to":
			out[f] = strOrNil(d.AssignedTo)
		case "assigned_to_id":
			out[f] = intOrNil(d.AssignedToID)
		case "assigned_to_str":
			out[f] = strOrNil(d.AssignedToStr)
		case "referred_to":
			out[f] = strOrNil(d.ReferredTo)
		case "referred_to_id":
			out[f] = intOrNil(d.ReferredToID)
		case "referred_to_str":
			out[f] = strOrNil(d.ReferredToStr)
		case "nature_of_suit":
			out[f] = strOrNil(d.NatureOfSuit)
		case "cause":
			out[f] = strOrNil(d.Cause)
		case "jury_demand":
			out[f] = strOrNil(d.JuryDemand)
		case "jurisdiction_type":
			out[f] = strOrNil(d.JurisdictionType)
		case "date_filed":
			out[f] = intOrNil(d.DateFiled)
		case "date_argued":
			out[f] = intOrNil(d.DateArgued)
		case "date_terminated":
			out[f] = intOrNil(d.DateTerminated)
		case "chapter":
			out[f] = strOrNil(d.Chapter)
		case "trustee_str":
			out[f] = strOrNil(d.TrusteeStr)
		case "pacer_case_id":
			out[f] = strOrNil(d.PacerCaseID)
		case "date_created":
			out[f] = intOrNil(d.DateCreated)
		}
	}
	return out
}

// filingPatch builds an index patch from fresh filing values for the
// given mapped field names.
func filingPatch(f *domfiling.Filing, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, name := range fields {
		switch name {
		case "entry_number":
			out[name] = intOrNil(f.EntryNumber)
		case "entry_date_filed":
			out[name] = intOrNil(f.EntryDateFiled)
		case "entry_description":
			out[name] = strOrNil(f.EntryDescription)
		case "document_number":
			out[name] = strOrNil(f.DocumentNumber)
		case "attachment_number":
			if f.AttachmentNumber == nil {
				out[name] = nil
			} else {
				out[name] = *f.AttachmentNumber
			}
			// the type is derived, keep it in step
			out["document_type"] = domfiling.DocType(f.AttachmentNumber)
		case "document_type":
			out[name] = domfiling.DocType(f.AttachmentNumber)
		case "description":
			out[name] = strOrNil(f.Description)
		case "short_description":
			out[name] = strOrNil(f.ShortDescription)
		case "page_count":
			out[name] = intOrNil(f.PageCount)
		case "is_available":
			out[name] = f.IsAvailable
		case "plain_text":
			out[name] = strOrNil(f.PlainText)
		case "pacer_doc_id":
			out[name] = strOrNil(f.PacerDocID)
		case "filepath_local":
			out[name] = strOrNil(f.FilepathLocal)
		}
	}
	return out
}

func strOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
