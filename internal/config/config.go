package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration read from the environment
type Config struct {
	ServerPort string `env:"PORT" envDefault:"8080"`

	// DatabaseType is sqlite, postgres or mysql. MySQL URLs need parseTime=true.
	DatabaseType   string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	DatabasePath   string `env:"DB_PATH" envDefault:"./germanclash.db"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	AudioCachePath string `env:"AUDIO_CACHE_PATH" envDefault:"./audio-cache"`

	JWTSecret          string        `env:"JWT_SECRET"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	PendingScoreSecret string        `env:"PENDING_SCORE_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	AppBaseURL           string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	OAuthRedirectBaseURL string `env:"OAUTH_REDIRECT_BASE_URL"`
	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`

	AWSRegion    string `env:"AWS_REGION" envDefault:"eu-west-1"`
	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME" envDefault:"German Learning App"`
	EmailDebug   bool   `env:"EMAIL_DEBUG" envDefault:"false"`

	RedisURL string `env:"REDIS_URL"`

	LLM LLMConfig
}

// LLMConfig selects and configures the exercise generation model
type LLMConfig struct {
	Provider        string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-5"`
	Timeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`
	MaxTokens       int           `env:"LLM_MAX_TOKENS" envDefault:"16384"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.OAuthRedirectBaseURL == "" {
		cfg.OAuthRedirectBaseURL = cfg.AppBaseURL
	}
	if cfg.PendingScoreSecret == "" {
		cfg.PendingScoreSecret = cfg.JWTSecret
	}
	return &cfg, nil
}

// GoogleOAuthEnabled reports whether Google sign-in is configured
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
