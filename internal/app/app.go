// Package app wires configuration into the services shared by the HTTP
// server, the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/extract"
	"github.com/phrazzld/baike-api/internal/fetch"
	"github.com/phrazzld/baike-api/internal/generation"
	"github.com/phrazzld/baike-api/internal/platform/gemini"
	"github.com/phrazzld/baike-api/internal/platform/ollama"
	"github.com/phrazzld/baike-api/internal/platform/openai"
	"github.com/phrazzld/baike-api/internal/platform/pagecache"
	"github.com/phrazzld/baike-api/internal/service"
	"github.com/phrazzld/baike-api/internal/service/auth"
	"github.com/phrazzld/baike-api/internal/task"
)

// App holds the shared application dependencies and owns their lifecycle.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Cache is nil when the page cache is disabled.
	Cache     *pagecache.Store
	Fetcher   *fetch.Client
	Extractor *extract.Extractor
	Tasks     *task.MemoryStore
	Runner    *task.Runner

	// JWT is nil when authentication is disabled.
	JWT auth.JWTService

	Extraction  *service.ExtractionService
	Enrichment  *service.EnrichmentService
	Definitions *service.DefinitionService
}

// New builds every component from cfg. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	var fetchOpts []fetch.Option
	if cfg.Cache.Driver != "" {
		cache, err := pagecache.Open(ctx, cfg.Cache.Driver, cfg.Cache.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open page cache: %w", err)
		}
		a.Cache = cache
		maxAge := time.Duration(cfg.Cache.MaxAgeMinutes) * time.Minute
		if maxAge > 0 {
			if purged, err := cache.Purge(ctx, time.Now().Add(-maxAge)); err != nil {
				logger.Warn("failed to purge stale pages", "error", err)
			} else if purged > 0 {
				logger.Info("purged stale pages", "count", purged)
			}
		}
		fetchOpts = append(fetchOpts, fetch.WithCache(cache, maxAge))
	}

	a.Fetcher = fetch.New(fetch.Config{
		Timeout:      cfg.Fetch.Timeout(),
		UserAgent:    cfg.Fetch.UserAgent,
		Accept:       cfg.Fetch.Accept,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	}, logger, fetchOpts...)

	a.Extractor = extract.New(extract.Config{
		TitleClasses:   cfg.Extract.TitleClasses,
		TagAttr:        cfg.Extract.TagAttr,
		LevelAttr:      cfg.Extract.LevelAttr,
		RefTag:         cfg.Extract.RefTag,
		TrailingMarker: cfg.Extract.TrailingMarker,
	}, logger)

	completer, err := NewCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		a.closeCache()
		return nil, err
	}
	annotator, err := generation.NewAnnotator(completer, cfg.LLM.ArticlePromptPath, cfg.LLM.Timeout(), logger)
	if err != nil {
		a.closeCache()
		return nil, fmt.Errorf("failed to create annotator: %w", err)
	}
	definer, err := generation.NewDefiner(completer, cfg.LLM.DefinitionPromptPath, cfg.LLM.Timeout(), logger)
	if err != nil {
		a.closeCache()
		return nil, fmt.Errorf("failed to create definer: %w", err)
	}

	if cfg.Auth.Enabled() {
		a.JWT, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			a.closeCache()
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	}

	a.Tasks = task.NewMemoryStore()
	a.Runner = task.NewRunner(a.Tasks, task.RunnerConfig{
		MaxConcurrent: cfg.Task.MaxConcurrent,
		Retention:     time.Duration(cfg.Task.RetentionMinutes) * time.Minute,
		SweepInterval: time.Duration(cfg.Task.SweepIntervalMinutes) * time.Minute,
	}, logger)

	policy := service.NewURLPolicy(cfg.Fetch.AllowedPrefixes)
	a.Extraction = service.NewExtractionService(policy, a.Fetcher, a.Extractor, logger)
	a.Enrichment = service.NewEnrichmentService(service.EnrichmentDeps{
		Policy:    policy,
		Fetcher:   a.Fetcher,
		Extractor: a.Extractor,
		Annotator: annotator,
		Store:     a.Tasks,
		Launcher:  a.Runner,
	}, logger)
	a.Definitions = service.NewDefinitionService(definer, logger)

	logger.Info("application initialized",
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.ModelName,
		"cache_driver", cfg.Cache.Driver,
		"auth_enabled", cfg.Auth.Enabled(),
		"max_concurrent_tasks", cfg.Task.MaxConcurrent)
	return a, nil
}

// NewCompleter selects the language model backend. Hosted providers without
// an API key get a completer that fails every call, so extraction keeps
// working and enrichment tasks fail with a clear message.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Completer, error) {
	switch cfg.Provider {
	case "gemini", "openai":
		if cfg.APIKey == "" {
			logger.Warn("no LLM API key configured, enrichment is disabled", "provider", cfg.Provider)
			return generation.Unconfigured("llm.api_key is not set for provider " + cfg.Provider), nil
		}
	}

	var (
		completer generation.Completer
		err       error
	)
	switch cfg.Provider {
	case "gemini":
		completer, err = gemini.New(ctx, cfg, logger)
	case "openai":
		completer, err = openai.New(cfg, logger)
	case "ollama":
		completer, err = ollama.New(cfg, nil, logger)
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s completer: %w", cfg.Provider, err)
	}
	return completer, nil
}

// Close stops background work, waiting for in-flight tasks to record their
// outcome, and releases the page cache.
func (a *App) Close() error {
	var errs []error
	if a.Runner != nil {
		a.Runner.Stop()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close page cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) closeCache() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
