package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/baike-api/internal/api/shared"
	"github.com/phrazzld/baike-api/internal/domain"
	"github.com/phrazzld/baike-api/internal/service"
)

// TermDefiner defines terms.
type TermDefiner interface {
	Define(ctx context.Context, q service.DefinitionQuery) (domain.TermDefinition, error)
}

// DefinitionHandler serves term definitions.
type DefinitionHandler struct {
	definer TermDefiner
	logger  *slog.Logger
}

// NewDefinitionHandler creates a DefinitionHandler.
func NewDefinitionHandler(definer TermDefiner, logger *slog.Logger) *DefinitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefinitionHandler{definer: definer, logger: logger.With("component", "definition_handler")}
}

// Define handles POST /api/definitions.
func (h *DefinitionHandler) Define(w http.ResponseWriter, r *http.Request) {
	var req DefinitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	def, err := h.definer.Define(r.Context(), service.DefinitionQuery{
		Term:    req.Term,
		Line:    req.Line,
		Article: req.Context,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toDefinitionResponse(def))
}
