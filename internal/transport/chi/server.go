package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/servo-app/refinery/internal/domain"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/metrics"
	healthuc "github.com/servo-app/refinery/internal/usecase/health"
	historyuc "github.com/servo-app/refinery/internal/usecase/history"
	refineuc "github.com/servo-app/refinery/internal/usecase/refine"
)

const defaultMaxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits bounds request handling.
type Limits struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	MaxBodyBytes    int64
}

// Server serves the refinement and history HTTP API.
type Server struct {
	refine        *refineuc.Service
	history       *historyuc.Service
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	refine *refineuc.Service,
	history *historyuc.Service,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.MaxBodyBytes <= 0 {
		limits.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		refine:  refine,
		history: history,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		fieldErrorHandler,
		sentinelHandler(domain.ErrInvalidCoordinates, http.StatusBadRequest, codeInvalidCoordinates),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrTooManyResults, http.StatusBadRequest, codeTooManyResults),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrHistoryUnavailable, http.StatusServiceUnavailable, codeHistoryUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/refine", s.RefineSearch)
	r.Post("/dedupe", s.Dedupe)
	r.Post("/similarity", s.Similarity)
	r.Route("/geo", func(r chi.Router) {
		r.Post("/within", s.WithinRadius)
		r.Post("/nearby", s.Nearby)
		r.Post("/correlate", s.Correlate)
	})
	r.Route("/history/{visitor}", func(r chi.Router) {
		r.Get("/", s.ListHistory)
		r.Post("/", s.RecordHistory)
		r.Delete("/", s.ClearHistory)
		r.Get("/path", s.PreviousPath)
		r.Put("/path", s.RecordPath)
	})
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

// RefineSearch handles POST /refine.
func (s *Server) RefineSearch(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.refine.RefineSearch(r.Context(), req.Results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(resultsToDTO(out)))
}

// Dedupe handles POST /dedupe.
func (s *Server) Dedupe(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if !s.decode(w, r, &req) {
		return
	}
	results, err := resultsFromDTO(req.Results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.refine.Dedupe(r.Context(), results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(resultsToDTO(out)))
}

// Similarity handles POST /similarity.
func (s *Server) Similarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.MaxRatio < 0 || req.MaxRatio > 1 || math.IsNaN(req.MaxRatio) {
		s.handleDomainError(w, domain.NewFieldError("max_ratio", "must be between 0 and 1"))
		return
	}
	c := s.refine.Similar(r.Context(), req.A, req.B, req.MaxRatio)
	writeJSON(w, http.StatusOK, similarityResponse{
		Distance: c.Distance,
		Ratio:    c.Ratio,
		Similar:  c.Similar,
		MaxRatio: c.MaxRatio,
	})
}

// WithinRadius handles POST /geo/within.
func (s *Server) WithinRadius(w http.ResponseWriter, r *http.Request) {
	q, req, ok := s.decodeGeo(w, r)
	if !ok {
		return
	}
	points, err := pointsFromDTO(req.Points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.refine.WithinRadius(r.Context(), &q, points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(pointsToDTO(out)))
}

// Nearby handles POST /geo/nearby.
func (s *Server) Nearby(w http.ResponseWriter, r *http.Request) {
	q, req, ok := s.decodeGeo(w, r)
	if !ok {
		return
	}
	points, err := pointsFromDTO(req.Points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.refine.Nearby(r.Context(), &q, points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(neighborsToDTO(out)))
}

// Correlate handles POST /geo/correlate.
func (s *Server) Correlate(w http.ResponseWriter, r *http.Request) {
	var req correlateRequest
	if !s.decode(w, r, &req) {
		return
	}
	results, err := resultsFromDTO(req.Results)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	points, err := pointsFromDTO(req.Points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out, err := s.refine.Correlate(r.Context(), results, points)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(pointsToDTO(out)))
}

// ListHistory handles GET /history/{visitor}.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context(), chi.URLParam(r, "visitor"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(historyToDTO(entries)))
}

// RecordHistory handles POST /history/{visitor}.
func (s *Server) RecordHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !s.decode(w, r, &req) {
		return
	}
	entries, err := s.history.Record(r.Context(), chi.URLParam(r, "visitor"), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newList(historyToDTO(entries)))
}

// ClearHistory handles DELETE /history/{visitor}.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context(), chi.URLParam(r, "visitor")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPath handles PUT /history/{visitor}/path.
func (s *Server) RecordPath(w http.ResponseWriter, r *http.Request) {
	var req pathDTO
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.history.RecordPath(r.Context(), chi.URLParam(r, "visitor"), req.Path); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviousPath handles GET /history/{visitor}/path.
func (s *Server) PreviousPath(w http.ResponseWriter, r *http.Request) {
	p, err := s.history.PreviousPath(r.Context(), chi.URLParam(r, "visitor"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pathDTO{Path: p})
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
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// decode reads a JSON body into v. Numbers inside untyped values stay json.Number.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.limits.MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, codeBadRequest, "request body is required")
		default:
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		}
		return false
	}
	return true
}

func (s *Server) decodeGeo(w http.ResponseWriter, r *http.Request) (request.RadiusQuery, geoRequest, bool) {
	var req geoRequest
	if !s.decode(w, r, &req) {
		return request.RadiusQuery{}, req, false
	}
	if req.Center == nil || req.Center.Lat == nil || req.Center.Lon == nil {
		s.handleDomainError(w, domain.NewFieldError("center", "lat and lon are required"))
		return request.RadiusQuery{}, req, false
	}
	q, err := request.NewRadiusQuery(
		*req.Center.Lat, *req.Center.Lon, req.RadiusKm,
		s.limits.DefaultRadiusKm, s.limits.MaxRadiusKm,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return request.RadiusQuery{}, req, false
	}
	return q, req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCoordinates,
		domain.ErrInvalidArgument,
		domain.ErrTooManyResults,
		domain.ErrNotFound,
		domain.ErrHistoryUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fieldErrorHandler reports the offending field of a validation error.
func fieldErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var fe *domain.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    codeValidationFailed,
		Message: fe.Field + " " + fe.Reason,
		Field:   fe.Field,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Debug("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
