package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnikaLegal/caseflow/internal/handler/dto"
	"github.com/AnikaLegal/caseflow/internal/store"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pinger   Pinger
	tasks    store.TaskStore
	events   store.TaskEventStore
	comments store.TaskCommentStore
}

// New creates a new Handler instance with all dependencies.
func New(pinger Pinger, tasks store.TaskStore, events store.TaskEventStore, comments store.TaskCommentStore) *Handler {
	return &Handler{
		pinger:   pinger,
		tasks:    tasks,
		events:   events,
		comments: comments,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Read-only query surface
	mux.HandleFunc("GET /api/v1/cases/{id}/tasks", h.handleListCaseTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}/events", h.handleTaskActivity)
}

// handleHealthz returns 200 OK if the backing store is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			slog.Error("database health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// extractID extracts and validates an ID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a valid UUID")
		return "", false
	}

	return id, true
}
