// Package sync applies change-feed events to the search index, keeping
// the denormalized docket copy on filings consistent with the source.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/domain"
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	"github.com/courtlens/docketdex/internal/domain/event"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
	"github.com/courtlens/docketdex/internal/metrics"
)

// Service is the index synchronizer.
type Service struct {
	repo   Repository
	source Source
	logger *zap.Logger
}

// New creates a synchronizer.
func New(repo Repository, source Source, logger *zap.Logger) *Service {
	return &Service{repo: repo, source: source, logger: logger}
}

// Handle applies one change-feed event. Patches are idempotent, so the
// worker may retry a failed event in full.
func (s *Service) Handle(ctx context.Context, e event.Event) error {
	if err := e.Validate(); err != nil {
		metrics.SyncEventsTotal.WithLabelValues(string(e.Kind), "error").Inc()
		return err
	}

	var (
		applied bool
		err     error
	)
	switch e.Kind {
	case event.FilingSaved:
		applied, err = s.filingSaved(ctx, e.FilingID)
	case event.FilingChanged:
		applied, err = s.filingChanged(ctx, e.FilingID, e.ChangedFields)
	case event.FilingDeleted:
		applied, err = s.filingDeleted(ctx, e.FilingID)
	case event.DocketSaved:
		applied, err = s.docketSaved(ctx, e.DocketID, e.ChangedFields)
	case event.DocketDeleted:
		applied, err = s.docketDeleted(ctx, e.DocketID)
	case event.JudgeSaved:
		applied, err = s.judgeSaved(ctx, e.JudgeID)
	case event.BankruptcySaved:
		applied, err = s.bankruptcySaved(ctx, e.DocketID)
	case event.BankruptcyDeleted:
		applied, err = s.bankruptcyDeleted(ctx, e.DocketID)
	case event.PartiesResync:
		applied, err = s.resyncParties(ctx, e.DocketID)
	}

	result := "applied"
	switch {
	case err != nil:
		result = "error"
	case !applied:
		result = "noop"
	}
	metrics.SyncEventsTotal.WithLabelValues(string(e.Kind), result).Inc()

	if err != nil {
		s.logger.Error("Sync event failed",
			zap.String("kind", string(e.Kind)),
			zap.Int64("docket_id", e.DocketID),
			zap.Int64("filing_id", e.FilingID),
			zap.Error(err),
		)
	}
	return err
}

// filingSaved indexes a filing with a fresh denormalized parent copy,
// creating the parent document first when it is not indexed yet.
func (s *Service) filingSaved(ctx context.Context, filingID int64) (bool, error) {
	f, err := s.source.GetFiling(ctx, filingID)
	if err != nil {
		if errors.Is(err, domain.ErrFilingNotFound) {
			// deleted at the source since the event was emitted
			return false, nil
		}
		return false, fmt.Errorf("source filing %d: %w", filingID, err)
	}

	d, err := s.source.GetDocket(ctx, f.DocketID)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source docket %d: %w", f.DocketID, err)
	}

	exists, err := s.repo.DocketExists(ctx, d.ID)
	if err != nil {
		return false, err
	}
	if !exists {
		if _, err := s.repo.UpsertDocket(ctx, &d); err != nil {
			metrics.IndexWriteErrorsTotal.WithLabelValues("upsert", "docket").Inc()
			return false, err
		}
		metrics.IndexWritesTotal.WithLabelValues("upsert", "docket").Inc()
	}

	f.ApplyDenorm(d.DenormCopy())
	f.DocumentType = domfiling.DocType(f.AttachmentNumber)
	if _, err := s.repo.UpsertFiling(ctx, &f); err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("upsert", "filing").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("upsert", "filing").Inc()
	return true, nil
}

// filingChanged patches only the mapped changed fields. A filing that
// was never indexed falls back to a full save.
func (s *Service) filingChanged(ctx context.Context, filingID int64, fields []string) (bool, error) {
	mapped := domfiling.MappedFields(fields)
	if len(mapped) == 0 {
		return false, nil
	}

	f, err := s.source.GetFiling(ctx, filingID)
	if err != nil {
		if errors.Is(err, domain.ErrFilingNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source filing %d: %w", filingID, err)
	}

	if err := s.repo.PatchFiling(ctx, filingID, filingPatch(&f, mapped)); err != nil {
		if errors.Is(err, domain.ErrFilingNotFound) {
			return s.filingSaved(ctx, filingID)
		}
		metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "filing").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("patch", "filing").Inc()
	return true, nil
}

func (s *Service) filingDeleted(ctx context.Context, filingID int64) (bool, error) {
	if err := s.repo.DeleteFiling(ctx, filingID); err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("delete", "filing").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("delete", "filing").Inc()
	return true, nil
}

// docketSaved maps changed source fields through the propagation
// classification. An empty field list is a full save (create path).
func (s *Service) docketSaved(ctx context.Context, docketID int64, fields []string) (bool, error) {
	if len(fields) == 0 {
		return s.docketFullSave(ctx, docketID)
	}

	change := domdocket.ClassifyChange(fields)
	if change.IsNoop() {
		// view_count and friends: zero index writes
		return false, nil
	}

	d, err := s.source.GetDocket(ctx, docketID)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source docket %d: %w", docketID, err)
	}

	if err := s.repo.PatchDocket(ctx, docketID, docketPatch(&d, change.Fields())); err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return s.docketFullSave(ctx, docketID)
		}
		metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "docket").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("patch", "docket").Inc()

	if len(change.Propagating) > 0 {
		if err := s.propagate(ctx, docketID, docketPatch(&d, change.Propagating), "docket_update"); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Service) docketFullSave(ctx context.Context, docketID int64) (bool, error) {
	d, err := s.source.GetDocket(ctx, docketID)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source docket %d: %w", docketID, err)
	}

	created, err := s.repo.UpsertDocket(ctx, &d)
	if err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("upsert", "docket").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("upsert", "docket").Inc()

	if !created {
		// replaced an existing document: children may hold a stale copy
		fields := docketPatch(&d, domdocket.ClassifyChange(propagatingFieldNames()).Propagating)
		if err := s.propagate(ctx, docketID, fields, "docket_update"); err != nil {
			return false, err
		}
	}
	return true, nil
}

// judgeSaved refreshes judge display names on every docket assigned or
// referred to the judge, then propagates to their filings.
func (s *Service) judgeSaved(ctx context.Context, judgeID int64) (bool, error) {
	ids, err := s.repo.DocketIDsByJudge(ctx, judgeID)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}

	start := time.Now()
	for _, id := range ids {
		d, err := s.source.GetDocket(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrDocketNotFound) {
				continue
			}
			return false, fmt.Errorf("source docket %d: %w", id, err)
		}

		fields := docketPatch(&d, []string{"assigned_to", "referred_to"})
		if err := s.repo.PatchDocket(ctx, id, fields); err != nil {
			if errors.Is(err, domain.ErrDocketNotFound) {
				continue
			}
			metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "docket").Inc()
			return false, err
		}
		metrics.IndexWritesTotal.WithLabelValues("patch", "docket").Inc()

		if err := s.repo.PatchFilingsByDocket(ctx, id, fields); err != nil {
			metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "filing").Inc()
			return false, err
		}
		metrics.IndexWritesTotal.WithLabelValues("patch", "filing").Inc()
	}
	metrics.PropagationDuration.WithLabelValues("judge_rename").Observe(time.Since(start).Seconds())

	s.logger.Info("Judge rename propagated",
		zap.Int64("judge_id", judgeID),
		zap.Int("dockets", len(ids)),
	)
	return true, nil
}

func (s *Service) bankruptcySaved(ctx context.Context, docketID int64) (bool, error) {
	d, err := s.source.GetDocket(ctx, docketID)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source docket %d: %w", docketID, err)
	}
	return s.patchBankruptcy(ctx, docketID, docketPatch(&d, []string{"chapter", "trustee_str"}))
}

func (s *Service) bankruptcyDeleted(ctx context.Context, docketID int64) (bool, error) {
	return s.patchBankruptcy(ctx, docketID, map[string]any{
		"chapter":     nil,
		"trustee_str": nil,
	})
}

func (s *Service) patchBankruptcy(ctx context.Context, docketID int64, fields map[string]any) (bool, error) {
	if err := s.repo.PatchDocket(ctx, docketID, fields); err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "docket").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("patch", "docket").Inc()

	if err := s.propagate(ctx, docketID, fields, "bankruptcy"); err != nil {
		return false, err
	}
	return true, nil
}

// docketDeleted cascades: children first, then the parent. Absent
// documents are a no-op on every step.
func (s *Service) docketDeleted(ctx context.Context, docketID int64) (bool, error) {
	if err := s.repo.DeleteFilingsByDocket(ctx, docketID); err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("delete", "filing").Inc()
		return false, err
	}
	if err := s.repo.DeleteDocket(ctx, docketID); err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("delete", "docket").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("delete", "docket").Inc()
	return true, nil
}

// resyncParties recomputes party, attorney and firm sets on the parent
// document only.
func (s *Service) resyncParties(ctx context.Context, docketID int64) (bool, error) {
	parties, err := s.source.GetParties(ctx, docketID)
	if err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("source parties of docket %d: %w", docketID, err)
	}

	if err := s.repo.PatchDocket(ctx, docketID, parties.Fields()); err != nil {
		if errors.Is(err, domain.ErrDocketNotFound) {
			return false, nil
		}
		metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "docket").Inc()
		return false, err
	}
	metrics.IndexWritesTotal.WithLabelValues("patch", "docket").Inc()
	return true, nil
}

func (s *Service) propagate(ctx context.Context, docketID int64, fields map[string]any, trigger string) error {
	start := time.Now()
	if err := s.repo.PatchFilingsByDocket(ctx, docketID, fields); err != nil {
		metrics.IndexWriteErrorsTotal.WithLabelValues("patch", "filing").Inc()
		return err
	}
	metrics.IndexWritesTotal.WithLabelValues("patch", "filing").Inc()
	metrics.PropagationDuration.WithLabelValues(trigger).Observe(time.Since(start).Seconds())
	return nil
}

// propagatingFieldNames lists every field of the denormalized copy for
// full-save propagation.
func propagatingFieldNames() []string {
	return []string{
		"case_name", "case_name_full", "docket_number", "court_id", "court",
		"assigned_to", "assigned_to_id", "assigned_to_str",
		"referred_to", "referred_to_id", "referred_to_str",
		"nature_of_suit", "cause", "jury_demand", "jurisdiction_type",
		"date_filed", "date_argued", "date_terminated",
		"chapter", "trustee_str",
	}
}
