package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	healthuc "github.com/zain621/rehmatshipping/internal/usecase/health"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the lookup service over HTTP.
type Server struct {
	lookup        Lookup
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(lookup Lookup, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		lookup: lookup,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrParse, http.StatusBadGateway, codePayloadInvalid),
		sentinelHandler(domain.ErrRender, http.StatusUnprocessableEntity, codeRenderFailed),
		sentinelHandler(domain.ErrReportNotFound, http.StatusNotFound, codeReportNotFound),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/search", s.SearchUsers)
		r.Get("/reports/{id}", s.DownloadReport)
	})
}

// SearchUsers handles GET /api/v1/users/search?q=<term>&report=<bool>.
func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request) {
	var (
		q      string
		report bool
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &q); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("Invalid format for parameter q: %s", err))
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "report", query, &report); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("Invalid format for parameter report: %s", err))
		return
	}

	out, err := s.lookup.Run(r.Context(), lookup.Request{Term: q, GenerateReport: report})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeToDTO(out))
}

// DownloadReport handles GET /api/v1/reports/{id}.
func (s *Server) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := s.lookup.Open(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", domain.ReportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.ReportFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
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

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
	msg := domain.UserMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, domain.MsgInternal)
}
