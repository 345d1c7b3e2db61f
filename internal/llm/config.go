package llm

import (
	"fmt"
	"time"

	"germanclash/internal/config"
)

const defaultMaxTokens = 16384

// Config holds all provider configuration.
type Config struct {
	// Provider is one of "gemini", "openai", "anthropic" or "mock".
	Provider string

	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig

	// Timeout bounds a single Generate call including retries.
	Timeout   time.Duration
	MaxTokens int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// ConfigFrom maps the environment settings onto a provider Config.
func ConfigFrom(s config.LLMConfig) Config {
	return Config{
		Provider:  s.Provider,
		Gemini:    GeminiConfig{APIKey: s.GeminiAPIKey, Model: s.GeminiModel},
		OpenAI:    OpenAIConfig{APIKey: s.OpenAIAPIKey, Model: s.OpenAIModel, BaseURL: s.OpenAIBaseURL},
		Anthropic: AnthropicConfig{APIKey: s.AnthropicAPIKey, Model: s.AnthropicModel},
		Timeout:   s.Timeout,
		MaxTokens: s.MaxTokens,
	}
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
