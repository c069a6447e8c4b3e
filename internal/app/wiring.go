package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/japanese-cards/internal/adapter/assets"
	"github.com/heartmarshall/japanese-cards/internal/adapter/notify"
	"github.com/heartmarshall/japanese-cards/internal/adapter/postgres"
	"github.com/heartmarshall/japanese-cards/internal/adapter/postgres/block"
	"github.com/heartmarshall/japanese-cards/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/japanese-cards/internal/adapter/provider/gemini"
	"github.com/heartmarshall/japanese-cards/internal/adapter/provider/google"
	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
	"github.com/heartmarshall/japanese-cards/internal/service/card"
	"github.com/heartmarshall/japanese-cards/internal/service/page"
)

// cardGenerator is satisfied by every generation provider.
type cardGenerator interface {
	DefineWord(ctx context.Context, text, apiKey string) (*domain.VocabularyCard, error)
	DefineGrammar(ctx context.Context, text, apiKey string) (*domain.GrammarCard, error)
}

// Deps holds the wired adapters and services shared by the server and the CLI.
type Deps struct {
	Pool     *pgxpool.Pool
	Blocks   *block.Repo
	Assets   *assets.Store
	Notifier *notify.Notifier
	Cards    *card.Service
	Pages    *page.Service
}

// Open connects to the database, applies migrations when enabled and wires
// the card service. The returned close function releases the pool.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, func(), error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return NewDeps(pool, cfg, logger), pool.Close, nil
}

// NewDeps wires the adapters and services around an open pool.
func NewDeps(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) *Deps {
	d := &Deps{
		Pool:     pool,
		Blocks:   block.New(pool),
		Assets:   assets.NewStore(cfg.Assets.Dir, logger),
		Notifier: notify.NewNotifier(cfg.Notify.NtfyURL, cfg.Notify.Timeout, logger),
	}
	d.Cards = card.NewService(
		logger,
		d.Blocks,
		NewGenerator(cfg.Generation, logger),
		NewSynthesizer(cfg.Speech, logger),
		d.Assets,
		d.Notifier,
		cfg.Credentials(),
		NewPolicy(cfg),
	)
	d.Pages = page.NewService(logger, d.Blocks)
	return d
}

// NewGenerator returns the generation provider selected by cfg.Provider.
func NewGenerator(cfg config.GenerationConfig, logger *slog.Logger) cardGenerator {
	if cfg.Provider == config.ProviderAnthropic {
		return anthropic.NewProvider(cfg.AnthropicModel, cfg.AnthropicURL, cfg.Timeout, logger)
	}
	return gemini.NewProvider(cfg.GeminiModel, cfg.GeminiBaseURL, cfg.Timeout, logger)
}

// NewSynthesizer returns the Google TTS client configured by cfg.
func NewSynthesizer(cfg config.SpeechConfig, logger *slog.Logger) *google.Synthesizer {
	return google.NewSynthesizer(google.Config{
		BaseURL:      cfg.BaseURL,
		LanguageCode: cfg.LanguageCode,
		VoiceName:    cfg.VoiceName,
		Timeout:      cfg.Timeout,
	}, logger)
}

// NewPolicy derives the card layout policy from configuration.
func NewPolicy(cfg *config.Config) card.Policy {
	return card.Policy{
		VocabTag:      cfg.Cards.VocabTag,
		GrammarTag:    cfg.Cards.GrammarTag,
		Strategy:      domain.Strategy(cfg.Cards.Strategy),
		LoadingSuffix: cfg.Cards.LoadingSuffix,
		LinkPrefix:    cfg.Assets.LinkPrefix,
		GenerationKey: cfg.Generation.GenerationKey(),
	}
}
