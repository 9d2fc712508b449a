package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/baike-api/internal/api/shared"
	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/generation"
	"github.com/phrazzld/baike-api/internal/service"
	"github.com/phrazzld/baike-api/internal/task"
)

// Enricher submits and polls enrichment tasks.
type Enricher interface {
	Submit(ctx context.Context, url string) (service.Submission, error)
	Poll(ctx context.Context, id string) (task.Task, error)
}

// EnrichmentHandler serves the asynchronous enrichment endpoints.
type EnrichmentHandler struct {
	enricher Enricher
	logger   *slog.Logger
}

// NewEnrichmentHandler creates an EnrichmentHandler.
func NewEnrichmentHandler(enricher Enricher, logger *slog.Logger) *EnrichmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentHandler{enricher: enricher, logger: logger.With("component", "enrichment_handler")}
}

// Submit handles POST /api/enrichments. It answers 202 as soon as the task
// is registered.
func (h *EnrichmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sub, err := h.enricher.Submit(r.Context(), req.URL)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/enrichments/"+sub.ID)
	shared.RespondWithJSON(w, r, http.StatusAccepted, EnrichmentAcceptedResponse{
		ID:     sub.ID,
		Title:  sub.Title,
		Status: string(sub.Status),
	})
}

// Get handles GET /api/enrichments/{id}.
func (h *EnrichmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		HandleAPIError(w, r, domain.NewValidationError("id", "is required", nil))
		return
	}

	t, err := h.enricher.Poll(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := EnrichmentResponse{
		ID:        t.ID,
		Status:    string(t.Status),
		Result:    t.Result,
		Error:     t.Error,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Status == task.StatusCompleted {
		article := generation.ParseAnnotated(t.Result)
		resp.Article = &article
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
