package card

import (
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/domain"
)

// credentialLabels are the names users see in settings.
var credentialLabels = map[string]string{
	config.KeyGeminiAPIKey:    "Gemini AI API Key",
	config.KeyAnthropicAPIKey: "Anthropic API Key",
	config.KeyGoogleTTSAPIKey: "Google TTS API Key",
}

// Gate checks that required credentials are configured before a command
// causes any side effect.
type Gate struct {
	values map[string]string
}

// NewGate creates a Gate over a snapshot of the given values.
func NewGate(values map[string]string) *Gate {
	snapshot := make(map[string]string, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	return &Gate{values: snapshot}
}

// Check walks keys in order and returns a *domain.CredentialError for the
// first one that is absent or blank.
func (g *Gate) Check(keys ...string) error {
	for _, key := range keys {
		if strings.TrimSpace(g.values[key]) == "" {
			return &domain.CredentialError{Key: key, Label: credentialLabel(key)}
		}
	}
	return nil
}

// Value returns the configured value for key.
func (g *Gate) Value(key string) string {
	return strings.TrimSpace(g.values[key])
}

func credentialLabel(key string) string {
	if label, ok := credentialLabels[key]; ok {
		return label
	}
	// unknown keys: "some_api_key" -> "some api key"
	return strings.ReplaceAll(key, "_", " ")
}

// credentialMessage is the user-facing text for a missing credential.
func credentialMessage(e *domain.CredentialError) string {
	return "Please set the " + e.Label + " first"
}
