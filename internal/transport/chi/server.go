// Package chi exposes the search engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adequity/brandflow-search/internal/domain"
	"github.com/adequity/brandflow-search/internal/domain/schema"
	healthuc "github.com/adequity/brandflow-search/internal/usecase/health"
	searchuc "github.com/adequity/brandflow-search/internal/usecase/search"
	statsuc "github.com/adequity/brandflow-search/internal/usecase/stats"
	suggestuc "github.com/adequity/brandflow-search/internal/usecase/suggest"
)

// Error codes returned in error bodies.
const (
	codeBadRequest     = "bad_request"
	codeEntityNotFound = "entity_not_found"
	codeInternalError  = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers of the search API.
type Server struct {
	search        *searchuc.Service
	suggest       *suggestuc.Service
	stats         *statsuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	suggest *suggestuc.Service,
	stats *statsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		suggest: suggest,
		stats:   stats,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEntityNotRegistered, http.StatusNotFound, codeEntityNotFound),
	}
	return s
}

// Routes mounts all API handlers on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Post("/campaigns", s.searchEntity(schema.EntityCampaigns))
		r.Post("/purchase-requests", s.searchEntity(schema.EntityPurchaseRequests))
		r.Get("/fields/{entity}", s.getFields)
		r.Get("/suggestions/{entity}", s.getSuggestions)
		r.Get("/quick", s.quickSearch)
		r.Get("/stats/{entity}", s.getStats)
	})
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// searchEntity handles POST /api/v1/search/{entity}.
func (s *Server) searchEntity(entity string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}

		page, err := s.search.Search(r.Context(), entity, req.toRequest())
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pageToDTO(page))
	}
}

// getFields handles GET /api/v1/search/fields/{entity}.
func (s *Server) getFields(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)

	fields, err := s.search.SearchableFields(entity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fieldsResponseDTO{
		Entity: entity,
		Fields: fieldsToDTO(fields),
	})
}

// getSuggestions handles GET /api/v1/search/suggestions/{entity}.
func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)
	field := r.URL.Query().Get("field")
	text := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", suggestuc.DefaultLimit)

	values := s.suggest.Suggest(r.Context(), entity, field, text, limit)
	if values == nil {
		values = []string{}
	}

	writeJSON(w, http.StatusOK, suggestionsResponseDTO{Suggestions: values})
}

// quickSearch handles GET /api/v1/search/quick.
func (s *Server) quickSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required")
		return
	}

	var entities []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				entities = append(entities, normalizeEntity(t))
			}
		}
	}
	limit := queryInt(r, "limit", searchuc.DefaultQuickLimit)

	pages, err := s.search.QuickSearch(r.Context(), q, entities, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make(map[string]pageDTO, len(pages))
	for entity, page := range pages {
		results[entity] = pageToDTO(page)
	}

	writeJSON(w, http.StatusOK, quickSearchResponseDTO{Query: q, Results: results})
}

// getStats handles GET /api/v1/search/stats/{entity}.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	entity := entityParam(r)

	rep, err := s.stats.Report(r.Context(), entity)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsToDTO(rep))
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
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

// entityParam reads the entity path parameter, accepting hyphenated URL
// spellings for entities registered with underscores.
func entityParam(r *http.Request) string {
	return normalizeEntity(chi.URLParam(r, "entity"))
}

func normalizeEntity(entity string) string {
	return strings.ReplaceAll(entity, "-", "_")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponseDTO{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEntityNotRegistered,
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
