package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/japanese-cards/internal/app"
	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/card"
	"github.com/heartmarshall/japanese-cards/internal/service/page"
)

type commandRunner interface {
	Run(ctx context.Context, nameOrSlug string) (*card.Result, error)
}

type pageClient interface {
	Import(ctx context.Context, r io.Reader) (*page.ImportResult, error)
	Export(ctx context.Context, w io.Writer, pageID uuid.UUID) error
	Tree(ctx context.Context, pageID uuid.UUID) ([]domain.BlockNode, error)
}

// openFunc connects the command registry. The returned function releases it.
type openFunc func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (commandRunner, func(), error)

// openPagesFunc connects the page service. The returned function releases it.
type openPagesFunc func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pageClient, func(), error)

type commandContext struct {
	configFlag string
	verbose    bool

	open      openFunc
	openPages openPagesFunc

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{open: openRegistry, openPages: openPageService}
}

func openRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (commandRunner, func(), error) {
	deps, closeDeps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.Cards.Commands(), closeDeps, nil
}

func openPageService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pageClient, func(), error) {
	deps, closeDeps, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.Pages, closeDeps, nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.LoadFrom(strings.TrimSpace(c.configFlag))
	})
	return c.config, c.configErr
}

// logger writes to stderr only with --verbose so stdout stays readable.
func (c *commandContext) logger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	if !c.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return app.NewLoggerTo(stderr, config.LogConfig{Level: "debug", Format: cfg.Log.Format})
}
