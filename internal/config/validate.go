package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
//
// API keys are not required here; a missing key is reported to the user by
// the credential gate when a command runs.
func (c *Config) Validate() error {
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch c.Generation.Provider {
	case ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("generation.provider must be %q or %q (got %q)", ProviderGemini, ProviderAnthropic, c.Generation.Provider)
	}

	if !domain.Strategy(c.Cards.Strategy).IsValid() {
		return fmt.Errorf("cards.strategy must be %q or %q (got %q)",
			domain.StrategyReplace, domain.StrategySiblingBefore, c.Cards.Strategy)
	}

	if strings.TrimSpace(c.Cards.VocabTag) == "" || strings.TrimSpace(c.Cards.GrammarTag) == "" {
		return fmt.Errorf("cards.vocab_tag and cards.grammar_tag must not be empty")
	}

	if c.Assets.Dir == "" {
		return fmt.Errorf("assets.dir must not be empty")
	}

	if _, err := url.ParseRequestURI(c.Speech.BaseURL); err != nil {
		return fmt.Errorf("speech.base_url: %w", err)
	}

	if c.Server.CommandsPerMin <= 0 {
		return fmt.Errorf("server.commands_per_min must be > 0 (got %d)", c.Server.CommandsPerMin)
	}

	return nil
}
