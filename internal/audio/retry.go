package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds how long playback keeps trying before giving up
type RetryPolicy struct {
	Attempts int
	Interval time.Duration
}

// DefaultRetryPolicy tries ten times, half a second apart
var DefaultRetryPolicy = RetryPolicy{Attempts: 10, Interval: 500 * time.Millisecond}

// SpeakWithRetry calls the speaker until it succeeds or the policy is exhausted.
// Callers fall back to showing the written word when it fails.
func SpeakWithRetry(ctx context.Context, speaker Speaker, text string, opts Options, policy RetryPolicy) ([]byte, error) {
	attempts := policy.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := speaker.Speak(ctx, text, opts)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if errors.Is(err, ErrEmptyText) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.Interval):
		}
	}

	log.Printf("Warning: audio unavailable for %q: %v", text, lastErr)
	return nil, fmt.Errorf("audio unavailable after %d attempts: %w", attempts, lastErr)
}
