// Package handler exposes the search service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vero/internal/platform/metrics"
	"vero/internal/platform/middleware"
	"vero/internal/search"
	"vero/internal/transport/http/shared"
	dErrors "vero/pkg/domain-errors"
)

// Service defines the interface for search operations.
type Service interface {
	Search(ctx context.Context, query string, topK int) ([]search.Chunk, error)
}

// HealthCheck names one dependency probe run by the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler handles search-related endpoints.
type Handler struct {
	logger  *slog.Logger
	search  Service
	metrics *metrics.Metrics
	checks  []HealthCheck
}

// New creates a search Handler.
func New(search Service, logger *slog.Logger, m *metrics.Metrics, checks ...HealthCheck) *Handler {
	return &Handler{
		logger:  logger,
		search:  search,
		metrics: m,
		checks:  checks,
	}
}

// Register registers the search routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	searchRouter := chi.NewRouter()
	searchRouter.Use(middleware.Recovery(h.logger))
	searchRouter.Use(middleware.RequestID)
	searchRouter.Use(middleware.Logger(h.logger))
	searchRouter.Use(middleware.Timeout(30 * time.Second))
	searchRouter.Use(middleware.ContentTypeJSON)
	searchRouter.Use(middleware.Latency(h.metrics))
	searchRouter.Post("/internal_search", h.handleSearch)
	searchRouter.Get("/health", h.handleHealth)

	r.Mount("/", searchRouter)
}

// SearchRequest is the POST /internal_search body.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResponse is the POST /internal_search reply.
type SearchResponse struct {
	Results []search.Chunk `json:"results"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid search request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	results, err := h.search.Search(ctx, req.Query, req.TopK)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "rejected search request",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "search failed"))
		return
	}

	if results == nil {
		results = []search.Chunk{}
	}
	shared.WriteJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "healthy"
	components := make(map[string]string, len(h.checks))
	httpStatus := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			components[check.Name] = err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		components[check.Name] = "ok"
	}

	body := map[string]any{"status": status}
	if len(components) > 0 {
		body["components"] = components
	}
	shared.WriteJSON(w, httpStatus, body)
}
