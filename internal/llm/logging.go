package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider records every request with its latency and token usage.
type LoggingProvider struct {
	inner  Provider
	logger *slog.Logger
}

// WithLogging wraps a Provider with structured request logging.
func WithLogging(p Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		"model", l.inner.ModelID(),
		"temperature", req.Temperature,
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		l.logger.Warn("llm request failed", append(attrs, "error", err)...)
		return nil, err
	}

	l.logger.Info("llm request",
		append(attrs,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
			"bytes", len(resp.Content),
		)...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
