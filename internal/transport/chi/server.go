// Package chi exposes the HTTP API on a go-chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/db"
	"github.com/clearmark/clearmark/internal/domain"
	healthuc "github.com/clearmark/clearmark/internal/usecase/health"
	intakeuc "github.com/clearmark/clearmark/internal/usecase/intake"
	reviewuc "github.com/clearmark/clearmark/internal/usecase/review"
	searchuc "github.com/clearmark/clearmark/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the HTTP API onto the use case services.
type Server struct {
	intake        *intakeuc.Service
	pipeline      *searchuc.Service
	review        *reviewuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	intake *intakeuc.Service,
	pipeline *searchuc.Service,
	review *reviewuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		intake:   intake,
		pipeline: pipeline,
		review:   review,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRequestNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrRequestNotPending, http.StatusBadRequest),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest),
		sentinelHandler(domain.ErrRegistryUnavailable, http.StatusBadGateway),
		sentinelHandler(domain.ErrResultPersist, http.StatusInternalServerError),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable),
		storeErrorHandler,
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1/searches", func(r chi.Router) {
		r.Post("/", s.RegisterSearch)
		r.Get("/pending", s.ListPendingSearches)
		r.Post("/{searchId}/run", s.RunSearch)
		r.Get("/{searchId}/results", s.GetSearchResults)
		r.Post("/{searchId}/evaluations", s.EvaluateSearchResults)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// RegisterSearch handles POST /api/v1/searches.
func (s *Server) RegisterSearch(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	created, err := s.intake.Register(r.Context(), req.BaseTrademark, req.QueryText)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestToDTO(created))
}

// ListPendingSearches handles GET /api/v1/searches/pending.
func (s *Server) ListPendingSearches(w http.ResponseWriter, r *http.Request) {
	pending, err := s.intake.ListPending(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchRequestDTO, len(pending))
	for i, req := range pending {
		items[i] = requestToDTO(req)
	}

	writeJSON(w, http.StatusOK, pendingListResponse{Items: items, Total: len(items)})
}

// RunSearch handles POST /api/v1/searches/{searchId}/run.
func (s *Server) RunSearch(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.searchIDParam(w, r)
	if !ok {
		return
	}

	outcome, err := s.pipeline.Run(r.Context(), searchID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// The trigger call returns the merged rows directly so the caller
	// does not need a second round-trip to the results endpoint.
	rows := make([]resultRowDTO, len(outcome.Rows))
	for i, row := range outcome.Rows {
		rows[i] = rowToDTO(row)
	}

	writeJSON(w, http.StatusOK, runResponse{
		SearchID:    strconv.FormatInt(outcome.SearchID, 10),
		Results:     rows,
		ResultCount: len(rows),
		ProcessedAt: outcome.ProcessedAt,
	})
}

// GetSearchResults handles GET /api/v1/searches/{searchId}/results.
func (s *Server) GetSearchResults(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.searchIDParam(w, r)
	if !ok {
		return
	}

	set, err := s.review.Results(r.Context(), searchID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	rows := make([]resultRowDTO, len(set.Rows))
	for i, row := range set.Rows {
		rows[i] = rowToDTO(row)
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		Request: requestToDTO(set.Request),
		Results: rows,
		Total:   len(rows),
	})
}

// EvaluateSearchResults handles POST /api/v1/searches/{searchId}/evaluations.
func (s *Server) EvaluateSearchResults(w http.ResponseWriter, r *http.Request) {
	searchID, ok := s.searchIDParam(w, r)
	if !ok {
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	evals := make([]reviewuc.Evaluation, len(req.Evaluations))
	for i, e := range req.Evaluations {
		evals[i] = reviewuc.Evaluation{
			ApplicationNumber: e.ApplicationNumber,
			Verdict:           e.Evaluation,
		}
	}

	updated, err := s.review.Evaluate(r.Context(), searchID, evals)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{Updated: updated})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchIDParam parses the {searchId} path parameter. A malformed or
// non-positive id is a client error, never a lookup.
func (s *Server) searchIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "searchId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid search id", raw)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorResponse{Error: message, Detail: detail})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRequestNotFound,
		domain.ErrRequestNotPending,
		domain.ErrInvalidInput,
		domain.ErrRegistryUnavailable,
		domain.ErrResultPersist,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg, "")
		return true
	}
}

// storeErrorHandler maps raw store failures to 503. Errors already
// classified by a sentinel are handled before this runs.
func storeErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error(), "")
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func requestToDTO(req domain.SearchRequest) searchRequestDTO {
	dto := searchRequestDTO{
		SearchID:      strconv.FormatInt(req.ID(), 10),
		BaseTrademark: req.BaseTrademark(),
		QueryText:     req.Query(),
		Status:        string(req.Status()),
		CreatedAt:     req.CreatedAt(),
	}
	if !req.ProcessedAt().IsZero() {
		t := req.ProcessedAt()
		dto.ProcessedAt = &t
	}
	return dto
}

// rowToDTO flattens a result row: the registry fields plus the run
// bookkeeping in one object, matching the stored row shape.
func rowToDTO(row domain.ResultRow) resultRowDTO {
	dto := make(resultRowDTO, len(row.Item().Fields())+5)
	for k, v := range row.Item().Fields() {
		dto[k] = v
	}
	dto[domain.FieldSearchID] = strconv.FormatInt(row.SearchID(), 10)
	dto[domain.FieldIndexNo] = row.IndexNo()
	dto[domain.FieldBaseTrademark] = row.BaseTrademark()
	dto[domain.FieldProcessedAt] = row.ProcessedAt().Format(time.RFC3339)
	dto[domain.FieldEvaluation] = row.Evaluation()
	return dto
}
