package security

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a window limiter check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// WindowLimiter counts events per key within a rolling window.
// The contact form uses it to cap messages per user.
type WindowLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryWindow keeps a sliding log of event times per key
type MemoryWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	events map[string][]time.Time
	now    func() time.Time
}

// NewMemoryWindow creates an in-process limiter allowing limit events per window
func NewMemoryWindow(limit int, window time.Duration) *MemoryWindow {
	return &MemoryWindow{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records an event for key when under the limit
func (m *MemoryWindow) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	kept := m.events[key][:0]
	for _, at := range m.events[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= m.limit {
		m.events[key] = kept
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: kept[0].Add(m.window).Sub(now),
		}, nil
	}

	kept = append(kept, now)
	m.events[key] = kept
	return Decision{Allowed: true, Remaining: m.limit - len(kept)}, nil
}

// RedisWindow shares a fixed window counter between replicas
type RedisWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisWindow creates a Redis-backed limiter. Keys are namespaced as prefix:key.
func NewRedisWindow(client *redis.Client, prefix string, limit int, window time.Duration) *RedisWindow {
	return &RedisWindow{client: client, prefix: strings.TrimRight(prefix, ":"), limit: limit, window: window}
}

func (w *RedisWindow) key(key string) string {
	return w.prefix + ":" + key
}

// Allow increments the counter for key, starting the window on the first event
func (w *RedisWindow) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := w.key(key)

	count, err := w.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incrementing rate window: %w", err)
	}
	if count == 1 {
		if err := w.client.Expire(ctx, redisKey, w.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("setting rate window expiry: %w", err)
		}
	}

	if int(count) > w.limit {
		ttl, err := w.client.TTL(ctx, redisKey).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("reading rate window expiry: %w", err)
		}
		if ttl < 0 {
			ttl = w.window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: w.limit - int(count)}, nil
}
