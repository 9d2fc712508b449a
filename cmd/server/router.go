package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/baike-api/internal/api"
	apiMiddleware "github.com/phrazzld/baike-api/internal/api/middleware"
	"github.com/phrazzld/baike-api/internal/app"
)

// newRouter creates the application router with all routes and middleware.
func newRouter(a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(a.Logger))

	handlers := api.Handlers{
		Extract:    api.NewExtractHandler(a.Extraction, a.Logger),
		Enrichment: api.NewEnrichmentHandler(a.Enrichment, a.Logger),
		Definition: api.NewDefinitionHandler(a.Definitions, a.Logger),
	}

	var protected []func(http.Handler) http.Handler
	if a.JWT != nil {
		protected = append(protected, apiMiddleware.NewAuthMiddleware(a.JWT).Authenticate)
	}

	r.Route("/api", func(r chi.Router) {
		handlers.Mount(r, protected...)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			a.Logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
