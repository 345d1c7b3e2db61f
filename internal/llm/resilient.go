package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

// ResilientProvider wraps a provider with a circuit breaker and retries
type ResilientProvider struct {
	provider       Provider
	circuitBreaker circuitbreaker.CircuitBreaker[*Response]
	retrier        retry.Retry[*Response]
	timeout        time.Duration
	logger         *slog.Logger
}

// ResilientConfig holds configuration for the resilient wrapper
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	OpenTimeout      time.Duration

	// Timeout bounds one Generate call including retries. Zero disables it.
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultResilientConfig returns the settings used by the server
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:      3,
		InitialDelay:     time.Second,
		MaxDelay:         10 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      60 * time.Second,
		Timeout:          90 * time.Second,
	}
}

// NewResilientProvider wraps a provider with fortify resilience patterns
func NewResilientProvider(provider Provider, cfg ResilientConfig) *ResilientProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	rp := &ResilientProvider{
		provider: provider,
		timeout:  cfg.Timeout,
		logger:   logger,
	}

	threshold := cfg.FailureThreshold
	rp.circuitBreaker = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"model", provider.ModelID(),
				"from", from.String(),
				"to", to.String())
		},
	})

	rp.retrier = retry.New[*Response](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   IsRetryable,
	})

	return rp
}

func (p *ResilientProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.circuitBreaker.Execute(ctx, func(ctx context.Context) (*Response, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (*Response, error) {
			return p.provider.Generate(ctx, req)
		})
	})
}

func (p *ResilientProvider) ModelID() string {
	return p.provider.ModelID()
}

// IsRetryable reports whether err is a transient provider failure.
// Truncation, schema mismatches and rejected requests are not retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrProviderUnavailable
	return errors.As(err, &unavail)
}
