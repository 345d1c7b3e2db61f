package generation

import (
	"context"
	"log/slog"

	"germanclash/internal/config"
	"germanclash/internal/llm"
)

// FromConfig builds a generator for the configured model provider. It fails when the
// provider has no API key.
func FromConfig(ctx context.Context, cfg config.LLMConfig, source Source, logger *slog.Logger) (*Generator, error) {
	provider, err := llm.NewProvider(ctx, llm.ConfigFrom(cfg), logger)
	if err != nil {
		return nil, err
	}
	return NewGenerator(provider, source, WithMaxTokens(cfg.MaxTokens)), nil
}
