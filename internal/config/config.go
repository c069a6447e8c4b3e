package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
	Generation GenerationConfig `yaml:"generation"`
	Speech     SpeechConfig     `yaml:"speech"`
	Cards      CardsConfig      `yaml:"cards"`
	Assets     AssetsConfig     `yaml:"assets"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"5m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CommandsPerMin  int           `yaml:"commands_per_min" env:"SERVER_COMMANDS_PER_MIN" env-default:"30"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"10s"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// AuthConfig holds bearer-token settings for the command API.
// An empty JWTSecret disables authentication.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string        `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"japanese-cards"`
	TokenTTL  time.Duration `yaml:"token_ttl"  env:"AUTH_TOKEN_TTL"  env-default:"720h"`
}

// Enabled reports whether the command API requires a bearer token.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// CORSConfig holds the cross-origin policy for browser-hosted editors.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost,lsp://logseq.io"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Authorization,Content-Type,X-Request-Id"`
	MaxAge         int    `yaml:"max_age"         env:"CORS_MAX_AGE"         env-default:"600"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Generation providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// GenerationConfig selects and configures the card generation service.
type GenerationConfig struct {
	Provider        string        `yaml:"provider"          env:"GENERATION_PROVIDER"          env-default:"gemini"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"    env:"GEMINI_AI_API_KEY"`
	GeminiModel     string        `yaml:"gemini_model"      env:"GEMINI_MODEL"                 env-default:"gemini-2.0-flash"`
	GeminiBaseURL   string        `yaml:"gemini_base_url"   env:"GEMINI_BASE_URL"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `yaml:"anthropic_model"   env:"ANTHROPIC_MODEL"              env-default:"claude-sonnet-4-5"`
	AnthropicURL    string        `yaml:"anthropic_url"     env:"ANTHROPIC_BASE_URL"`
	Timeout         time.Duration `yaml:"timeout"           env:"GENERATION_TIMEOUT"           env-default:"60s"`
}

// SpeechConfig configures the text-to-speech service.
type SpeechConfig struct {
	APIKey       string        `yaml:"api_key"       env:"GOOGLE_TTS_API_KEY"`
	BaseURL      string        `yaml:"base_url"      env:"GOOGLE_TTS_BASE_URL"      env-default:"https://texttospeech.googleapis.com"`
	LanguageCode string        `yaml:"language_code" env:"GOOGLE_TTS_LANGUAGE_CODE" env-default:"ja-JP"`
	VoiceName    string        `yaml:"voice_name"    env:"GOOGLE_TTS_VOICE_NAME"    env-default:"ja-JP-Neural2-D"`
	Timeout      time.Duration `yaml:"timeout"       env:"GOOGLE_TTS_TIMEOUT"       env-default:"30s"`
}

// CardsConfig holds card layout and insertion policy.
type CardsConfig struct {
	VocabTag      string `yaml:"vocab_tag"      env:"CARDS_VOCAB_TAG"      env-default:"#words"`
	GrammarTag    string `yaml:"grammar_tag"    env:"CARDS_GRAMMAR_TAG"    env-default:"#grammar"`
	Strategy      string `yaml:"strategy"       env:"CARDS_STRATEGY"       env-default:"sibling"`
	LoadingSuffix string `yaml:"loading_suffix" env:"CARDS_LOADING_SUFFIX" env-default:" loading..."`
}

// AssetsConfig holds where audio files are written and how they are linked.
type AssetsConfig struct {
	Dir        string `yaml:"dir"         env:"ASSETS_DIR"         env-default:"./assets/storages/logseq-plugin-japanese-card"`
	LinkPrefix string `yaml:"link_prefix" env:"ASSETS_LINK_PREFIX" env-default:"../assets/storages/logseq-plugin-japanese-card/"`
}

// NotifyConfig configures the optional push channel for user-facing messages.
type NotifyConfig struct {
	NtfyURL string        `yaml:"ntfy_url" env:"NOTIFY_NTFY_URL"`
	Timeout time.Duration `yaml:"timeout"  env:"NOTIFY_TIMEOUT"  env-default:"10s"`
}

// Credential keys, named after the settings a user fills in.
const (
	KeyGeminiAPIKey    = "gemini_ai_api_key"
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyGoogleTTSAPIKey = "google_tts_api_key"
)

// Credentials returns the secret values keyed by their setting name.
// Absent values are present in the map as empty strings.
func (c *Config) Credentials() map[string]string {
	return map[string]string{
		KeyGeminiAPIKey:    c.Generation.GeminiAPIKey,
		KeyAnthropicAPIKey: c.Generation.AnthropicAPIKey,
		KeyGoogleTTSAPIKey: c.Speech.APIKey,
	}
}

// GenerationKey returns the credential key of the configured generation provider.
func (c GenerationConfig) GenerationKey() string {
	if c.Provider == ProviderAnthropic {
		return KeyAnthropicAPIKey
	}
	return KeyGeminiAPIKey
}
