// Package app wires configuration, adapters and services into the running
// command API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/japanese-cards/internal/config"
)

// Run loads configuration, connects to the database and serves the command
// API until ctx is cancelled or SIGINT/SIGTERM arrives. In-flight commands
// get ShutdownTimeout to finish.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("generation_provider", cfg.Generation.Provider),
		slog.String("card_strategy", cfg.Cards.Strategy),
		slog.Bool("auth_enabled", cfg.Auth.Enabled()),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeps()

	handler, stopRouter := NewRouter(cfg, deps, logger)
	defer stopRouter()

	return serve(ctx, cfg.Server, NewServer(cfg.Server, handler), logger)
}

func serve(ctx context.Context, cfg config.ServerConfig, srv *http.Server, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", serverAddr(cfg)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
