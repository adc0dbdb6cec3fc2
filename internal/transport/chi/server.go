// Package chi exposes the HTTP API: search, change-feed intake, party
// resync, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/courtlens/docketdex/internal/domain"
	"github.com/courtlens/docketdex/internal/domain/event"
	"github.com/courtlens/docketdex/internal/domain/search/request"
	"github.com/courtlens/docketdex/internal/domain/search/result"
	"github.com/courtlens/docketdex/internal/logger"
	"github.com/courtlens/docketdex/internal/metrics"
	healthuc "github.com/courtlens/docketdex/internal/usecase/health"
	"github.com/courtlens/docketdex/internal/worker"
)

// searcher runs validated search requests (ISP).
type searcher interface {
	Search(ctx context.Context, req *request.Request) (*result.Page, error)
}

// eventQueue accepts change-feed events for async processing (ISP).
type eventQueue interface {
	Submit(e event.Event) (string, error)
}

// healthChecker reports component availability (ISP).
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search searcher
	events eventQueue
	health healthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, events eventQueue, health healthChecker, logger *zap.Logger) *Server {
	return &Server{
		search: search,
		events: events,
		health: health,
		logger: logger,
	}
}

// Routes builds the router. Health and metrics are open; the mutating
// endpoints require an API key when keys are configured.
func (s *Server) Routes(apiKeys []string) chi.Router {
	r := chi.NewRouter()
	r.Use(s.jsonRecoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.Search)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(apiKeys))
			r.Post("/events", s.SubmitEvent)
			r.Post("/reindex/parties/{docketID}", s.ResyncParties)
		})
	})
	return r
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// SubmitEvent handles POST /api/v1/events: change-feed intake.
func (s *Server) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var e event.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	jobID, err := s.events.Submit(e)
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			writeError(w, http.StatusTooManyRequests, codeQueueFull, "event queue is full")
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// ResyncParties handles POST /api/v1/reindex/parties/{docketID}:
// explicit party, attorney and firm recomputation for one docket.
func (s *Server) ResyncParties(w http.ResponseWriter, r *http.Request) {
	docketID, err := strconv.ParseInt(chi.URLParam(r, "docketID"), 10, 64)
	if err != nil || docketID <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "docketID must be a positive integer")
		return
	}

	jobID, err := s.events.Submit(event.Event{Kind: event.PartiesResync, DocketID: docketID})
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			writeError(w, http.StatusTooManyRequests, codeQueueFull, "event queue is full")
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// requestLogger attaches a request-scoped logger carrying the chi
// request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger
		if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
			l = l.With(zap.String("request_id", reqID))
		}
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}

// jsonRecoverer converts panics into a JSON 500 instead of a plain
// text stacktrace.
func (s *Server) jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// searchRequestFromQuery maps URL query parameters onto the validated
// request aggregate. Date bounds are unix seconds.
func searchRequestFromQuery(r *http.Request) (request.Request, error) {
	q := r.URL.Query()

	parent := request.ParentFilters{
		Court:        q.Get("court"),
		CaseName:     q.Get("case_name"),
		DocketNumber: q.Get("docket_number"),
		AssignedTo:   q.Get("assigned_to"),
		ReferredTo:   q.Get("referred_to"),
		NatureOfSuit: q.Get("nature_of_suit"),
		Cause:        q.Get("cause"),
		PartyName:    q.Get("party_name"),
		AttyName:     q.Get("atty_name"),
		Firm:         q.Get("firm"),
	}
	var err error
	if parent.FiledAfter, err = queryInt64(q.Get("filed_after")); err != nil {
		return request.Request{}, errors.New("filed_after must be unix seconds")
	}
	if parent.FiledBefore, err = queryInt64(q.Get("filed_before")); err != nil {
		return request.Request{}, errors.New("filed_before must be unix seconds")
	}

	child := request.ChildFilters{
		Description:    q.Get("description"),
		DocumentNumber: q.Get("document_number"),
		AvailableOnly:  q.Get("available_only") == "true" || q.Get("available_only") == "1",
		PacerDocID:     q.Get("pacer_doc_id"),
	}
	if v := q.Get("attachment_number"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return request.Request{}, errors.New("attachment_number must be an integer")
		}
		child.AttachmentNumber = &n
	}

	page, err := queryInt(q.Get("page"))
	if err != nil {
		return request.Request{}, errors.New("page must be an integer")
	}
	pageSize, err := queryInt(q.Get("page_size"))
	if err != nil {
		return request.Request{}, errors.New("page_size must be an integer")
	}

	return request.New(
		q.Get("q"),
		request.Kind(q.Get("type")),
		parent,
		child,
		q.Get("order_by"),
		page,
		pageSize,
	)
}

func queryInt64(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeBadQuery         = "bad_query"
	codeBadOrder         = "bad_order"
	codeQueueFull        = "queue_full"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBadQuery):
		writeError(w, http.StatusBadRequest, codeBadQuery, err.Error())
	case errors.Is(err, domain.ErrBadOrder):
		writeError(w, http.StatusBadRequest, codeBadOrder, err.Error())
	default:
		logger.FromContext(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
