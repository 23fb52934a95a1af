package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
)

const defaultUnlockDepth = 2

// Server owns the HTTP surface of the advisor service.
type Server struct {
	service *AdvisorService
	logger  *slog.Logger
}

func NewServer(service *AdvisorService, logger *slog.Logger) *Server {
	return &Server{service: service, logger: logger}
}

// Router builds the chi router with all API routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/majors", s.handleMajors)
		r.Post("/audit", s.handleAudit)
		r.Post("/recommendations", s.handleRecommendations)
		r.Get("/prereq-graph", s.handlePrereqGraph)
		r.Get("/programs/search", s.handleProgramSearch)
		r.Get("/programs/{id}/synergy", s.handleSynergy)
	})
	return r
}

// loggingMiddleware logs every request with method, path, status and timing.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"remote", r.RemoteAddr,
			"elapsed", time.Since(start).String())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "Course Advisor API",
		"timestamp": time.Now().Format(time.RFC3339),
		"majors":    len(s.service.Majors()),
	})
}

func (s *Server) handleMajors(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]any{"majors": s.service.Majors()})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}
	if req.Major == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "major is required", "")
		return
	}

	resp, err := s.service.Audit(&req)
	if err != nil {
		s.sendServiceError(w, err, "AUDIT_ERROR", "Failed to run degree audit")
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse request body", err.Error())
		return
	}
	if req.Major == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "major is required", "")
		return
	}
	if req.Year < 1 || req.Year > 8 {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "year must be between 1 and 8", "")
		return
	}

	resp, err := s.service.Recommend(r.Context(), &req)
	if err != nil {
		s.sendServiceError(w, err, "ALGORITHM_ERROR", "Failed to generate recommendations")
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrereqGraph(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("course")
	if code == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "course parameter is required", "")
		return
	}
	depth := defaultUnlockDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "depth must be a positive integer", "")
			return
		}
		depth = d
	}

	tree, err := s.service.UnlockTree(code, depth)
	if err != nil {
		s.sendServiceError(w, err, "GRAPH_ERROR", "Failed to build unlock tree")
		return
	}
	s.sendJSON(w, http.StatusOK, tree)
}

func (s *Server) handleProgramSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_REQUIRED_FIELD", "q parameter is required", "")
		return
	}
	searchType := r.URL.Query().Get("type")
	switch searchType {
	case "", "major", "minor":
	default:
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "type must be major or minor", "")
		return
	}

	results := s.service.SearchPrograms(query, searchType)
	s.sendJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

func (s *Server) handleSynergy(w http.ResponseWriter, r *http.Request) {
	majorID := chi.URLParam(r, "id")

	results, err := s.service.Synergy(majorID)
	if err != nil {
		s.sendServiceError(w, err, "SYNERGY_ERROR", "Failed to compute program synergy")
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{
		"major":   majorID,
		"results": results,
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// sendServiceError maps domain errors to status codes. Unknown majors,
// courses and programs are client errors, everything else is a 500.
func (s *Server) sendServiceError(w http.ResponseWriter, err error, errorCode, message string) {
	switch {
	case errors.Is(err, ErrUnknownMajor), errors.Is(err, ErrUnknownCourse), errors.Is(err, ErrUnknownProgram):
		s.sendError(w, http.StatusNotFound, "NOT_FOUND", message, err.Error())
	default:
		s.logger.Error(message, "error", err)
		s.sendError(w, http.StatusInternalServerError, errorCode, message, err.Error())
	}
}

func (s *Server) sendError(w http.ResponseWriter, statusCode int, errorCode, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "error",
		"error_code": errorCode,
		"message":    message,
		"details":    details,
	})
}
