package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/baike-api/internal/api/shared"
	"github.com/phrazzld/baike-api/internal/domain"
)

// ExtractionRunner runs the synchronous extraction pipeline.
type ExtractionRunner interface {
	Run(ctx context.Context, url string) (domain.ExtractionResult, error)
}

// ExtractHandler serves synchronous extraction.
type ExtractHandler struct {
	runner ExtractionRunner
	logger *slog.Logger
}

// NewExtractHandler creates an ExtractHandler.
func NewExtractHandler(runner ExtractionRunner, logger *slog.Logger) *ExtractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{runner: runner, logger: logger.With("component", "extract_handler")}
}

// Extract handles POST /api/extract and its alias POST /api/process-url.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.runner.Run(r.Context(), req.URL)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toExtractResponse(result))
}
