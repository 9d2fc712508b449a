// Package main implements the entry point for the Baike API server, which
// extracts encyclopedia articles and enriches them with a language model.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/baike-api/internal/app"
	"github.com/phrazzld/baike-api/internal/config"
	"github.com/phrazzld/baike-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, sets up logging, wires the application and serves
// HTTP until a shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"allowed_prefixes", cfg.Fetch.AllowedPrefixes)

	ctx := context.Background()
	application, err := app.New(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	srv := newServer(cfg.Server, newRouter(application), application, l)
	return srv.serve(ctx, shutdownSignals())
}
