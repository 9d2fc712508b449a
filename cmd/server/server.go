package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/baike-api/internal/app"
	"github.com/phrazzld/baike-api/internal/config"
)

type server struct {
	http            *http.Server
	app             *app.App
	logger          *slog.Logger
	shutdownTimeout time.Duration

	// listener overrides Addr; tests bind an ephemeral port.
	listener net.Listener
}

func newServer(cfg config.ServerConfig, handler http.Handler, a *app.App, logger *slog.Logger) *server {
	return &server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		app:             a,
		logger:          logger,
		shutdownTimeout: time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second,
	}
}

// shutdownSignals returns a channel notified on SIGINT and SIGTERM.
func shutdownSignals() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}

// serve runs the HTTP server until stop fires, ctx is cancelled or the
// listener fails, then drains in-flight requests and closes the application.
func (s *server) serve(ctx context.Context, stop <-chan os.Signal) error {
	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.http.Addr)
		var err error
		if s.listener != nil {
			err = s.http.Serve(s.listener)
		} else {
			err = s.http.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server failed", "error", err)
			errCh <- err
			cancel()
		}
	}()

	select {
	case sig := <-stop:
		s.logger.Info("shutting down server", "signal", sig.String())
	case <-serverCtx.Done():
		s.logger.Info("server context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
	}
	if err := s.app.Close(); err != nil {
		errs = append(errs, err)
	}
	select {
	case err := <-errCh:
		errs = append(errs, fmt.Errorf("server failed: %w", err))
	default:
	}

	s.logger.Info("server shutdown completed")
	return errors.Join(errs...)
}
