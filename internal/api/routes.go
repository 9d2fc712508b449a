package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the API handlers mounted by Mount.
type Handlers struct {
	Extract    *ExtractHandler
	Enrichment *EnrichmentHandler
	Definition *DefinitionHandler
}

// Mount registers the API routes on r. Middlewares apply to every route.
func (h Handlers) Mount(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)

		r.Post("/extract", h.Extract.Extract)
		r.Post("/process-url", h.Extract.Extract)

		r.Post("/enrichments", h.Enrichment.Submit)
		r.Get("/enrichments/{id}", h.Enrichment.Get)

		r.Post("/definitions", h.Definition.Define)
	})
}
