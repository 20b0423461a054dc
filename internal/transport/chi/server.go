// Package chi exposes the search UI state over a small JSON API: read the
// reconciled state, mutate the query and refinements, and fetch facet-value
// suggestions. The transport owns no search semantics; it drives a Controls
// implementation and renders state snapshots.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchkit"
)

// ErrUnknownSort is returned by Controls.SetSort for an unconfigured option.
var ErrUnknownSort = errors.New("unknown sort option")

// Controls is the contract between the HTTP layer and the search UI state.
// Mutations schedule search cycles internally; reads return the current
// snapshot without waiting for in-flight requests.
type Controls interface {
	State() searchkit.SearchState
	SetQuery(query string)
	ToggleRefinement(attribute, value string)
	SetRange(attribute string, min, max *float64)
	SetPage(page int)
	SetSort(option string) error
	FacetValues(ctx context.Context, attribute, query string) error
	Ready(ctx context.Context) error
}

// Server handles the demo API routes.
type Server struct {
	controls Controls
	logger   *zap.Logger
}

// NewServer creates an HTTP API server over the given controls.
func NewServer(controls Controls, logger *zap.Logger) *Server {
	return &Server{controls: controls, logger: logger}
}

// Routes mounts all handlers on a fresh router. Middleware is the caller's
// concern.
func (s *Server) Routes() chirouter.Router {
	r := chirouter.NewRouter()
	r.Get("/api/v1/state", s.GetState)
	r.Post("/api/v1/query", s.SetQuery)
	r.Post("/api/v1/refinements", s.ToggleRefinement)
	r.Post("/api/v1/range", s.SetRange)
	r.Post("/api/v1/page", s.SetPage)
	r.Post("/api/v1/sort", s.SetSort)
	r.Get("/api/v1/facets/{attribute}", s.FacetValues)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// GetState handles GET /api/v1/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// SetQuery handles POST /api/v1/query.
func (s *Server) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.controls.SetQuery(req.Query)
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// ToggleRefinement handles POST /api/v1/refinements.
func (s *Server) ToggleRefinement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attribute string `json:"attribute"`
		Value     string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Attribute == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "attribute and value are required")
		return
	}

	s.controls.ToggleRefinement(req.Attribute, req.Value)
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// SetRange handles POST /api/v1/range. Omitting both bounds clears the
// refinement for the attribute.
func (s *Server) SetRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attribute string   `json:"attribute"`
		Min       *float64 `json:"min"`
		Max       *float64 `json:"max"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Attribute == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "attribute is required")
		return
	}
	if req.Min != nil && req.Max != nil && *req.Min > *req.Max {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "min must not exceed max")
		return
	}

	s.controls.SetRange(req.Attribute, req.Min, req.Max)
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// SetPage handles POST /api/v1/page.
func (s *Server) SetPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Page < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "page must not be negative")
		return
	}

	s.controls.SetPage(req.Page)
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// SetSort handles POST /api/v1/sort.
func (s *Server) SetSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sort string `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.controls.SetSort(req.Sort); err != nil {
		if errors.Is(err, ErrUnknownSort) {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(s.controls.State()))
}

// FacetValues handles GET /api/v1/facets/{attribute}. The call blocks until
// the suggestion query resolves, then returns the stored result.
func (s *Server) FacetValues(w http.ResponseWriter, r *http.Request) {
	attribute := chirouter.URLParam(r, "attribute")
	query := r.URL.Query().Get("query")

	if err := s.controls.FacetValues(r.Context(), attribute, query); err != nil {
		s.handleError(w, err)
		return
	}

	state := s.controls.State()
	res, ok := state.FacetResults[attribute]
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "no facet values for "+attribute)
		return
	}
	writeJSON(w, http.StatusOK, facetValuesToDTO(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	checks := map[string]string{"search_backend": "ok"}

	if err := s.controls.Ready(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
		checks["search_backend"] = "failed"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInternalError    = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}
