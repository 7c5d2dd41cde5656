// Package chi exposes the retrieval engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexroute/internal/domain"
	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/domain/usage"
	healthuc "github.com/kailas-cloud/lexroute/internal/usecase/health"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	answers       Answerer
	health        HealthChecker
	usage         UsageReporter
	maxLimit      int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxLimit caps the limit query
// parameter of GET /v1/search.
func NewServer(
	answers Answerer, health HealthChecker, usage UsageReporter, maxLimit int, logger *zap.Logger,
) *Server {
	s := &Server{
		answers:  answers,
		health:   health,
		usage:    usage,
		maxLimit: maxLimit,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownVersion, http.StatusBadRequest, ErrorCodeUnknownVersion),
		sentinelHandler(domain.ErrComparisonPartialFailure, http.StatusBadGateway, ErrorCodeComparisonFailed),
		sentinelHandler(domain.ErrTokenBudgetExceeded, http.StatusTooManyRequests, ErrorCodeBudgetExceeded),
		sentinelHandler(domain.ErrCompletionProviderError,
			http.StatusBadGateway, ErrorCodeCompletionProviderError),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ans, err := s.answers.Ask(r.Context(), req.Query, historyFromDTO(req.History))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askToDTO(ans))
}

// Search handles GET /v1/search?q=&version=&limit=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var (
		query   string
		version *string
		limit   *int
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &query); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid parameter q: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "version", q, &version); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid parameter version: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid parameter limit: "+err.Error())
		return
	}

	n := 0
	if limit != nil {
		n = *limit
		if n < 1 || (s.maxLimit > 0 && n > s.maxLimit) {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("limit must be between 1 and %d", s.maxLimit))
			return
		}
	}
	var v corpus.Version
	if version != nil {
		v = corpus.Version(*version)
	}

	res, err := s.answers.Search(r.Context(), query, v, n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchToDTO(res))
}

// Intent handles POST /v1/intent.
func (s *Server) Intent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := s.answers.Route(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, intentToDTO(d))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Usage handles GET /v1/usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	var period *string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &period); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid parameter period: "+err.Error())
		return
	}
	raw := ""
	if period != nil {
		raw = *period
	}
	p, ok := usage.ParsePeriod(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "period must be day or month")
		return
	}

	writeJSON(w, http.StatusOK, usageToDTO(p, s.usage.Report(r.Context(), p)))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrUnknownVersion,
		domain.ErrComparisonPartialFailure,
		domain.ErrTokenBudgetExceeded,
		domain.ErrCompletionProviderError,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
