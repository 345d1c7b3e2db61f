package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"germanclash/internal/models"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testPassword123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == "testPassword123" {
		t.Fatalf("HashPassword() returned %q", hash)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "testPassword123", hash, true},
		{"wrong password", "wrongPassword", hash, false},
		{"empty hash", "testPassword123", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := m.Issue(42, "ana@example.com", []string{"PRO"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt %v is in the past", expiresAt)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 || claims.Email != "ana@example.com" || len(claims.Roles) != 1 {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewTokenManager("other", time.Hour).Parse(token); err != ErrInvalidToken {
		t.Errorf("Parse() with wrong secret error = %v, want ErrInvalidToken", err)
	}

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(1, "x@example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Parse(old); err != ErrInvalidToken {
		t.Errorf("Parse() of expired token error = %v", err)
	}

	if _, _, err := NewTokenManager("", time.Hour).Issue(1, "", nil); err != ErrMissingSecret {
		t.Errorf("Issue() without secret error = %v", err)
	}
}

func TestPendingScoreSigner(t *testing.T) {
	s := NewPendingScoreSigner("secret")

	value, err := s.Encode(models.PendingScore{Level: 1, Score: 870})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Decode(value)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Level != 1 || got.Score != 870 {
		t.Errorf("Decode() = %+v", got)
	}

	payload, _, _ := strings.Cut(value, ".")
	forged, _ := s.Encode(models.PendingScore{Level: 1, Score: 99999})
	forgedPayload, _, _ := strings.Cut(forged, ".")
	_, sig, _ := strings.Cut(value, ".")

	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"no signature", payload},
		{"swapped payload", forgedPayload + "." + sig},
		{"other secret", mustEncode(t, NewPendingScoreSigner("other"), models.PendingScore{Level: 1, Score: 10})},
		{"invalid level", mustEncode(t, s, models.PendingScore{Level: 0, Score: 10})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Decode(tt.value); err != ErrInvalidPendingScore {
				t.Errorf("Decode() error = %v, want ErrInvalidPendingScore", err)
			}
		})
	}
}

func mustEncode(t *testing.T, s *PendingScoreSigner, score models.PendingScore) string {
	t.Helper()
	v, err := s.Encode(score)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(3 * time.Minute)
	rl.prune()
	if len(rl.visitors) != 0 {
		t.Errorf("prune left %d visitors", len(rl.visitors))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "192.0.2.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "192.0.2.1:1234", "10.0.0.3"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryWindow(t *testing.T) {
	w := NewMemoryWindow(5, time.Hour)
	now := time.Now()
	w.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := w.Allow(ctx, "user:1")
		if err != nil || !d.Allowed {
			t.Fatalf("event %d: decision = %+v, err = %v", i, d, err)
		}
		if d.Remaining != 4-i {
			t.Errorf("event %d: remaining = %d, want %d", i, d.Remaining, 4-i)
		}
	}

	d, _ := w.Allow(ctx, "user:1")
	if d.Allowed {
		t.Fatal("sixth event should be rejected")
	}
	if d.RetryAfter != time.Hour {
		t.Errorf("RetryAfter = %v, want 1h", d.RetryAfter)
	}

	now = now.Add(time.Hour + time.Second)
	if d, _ := w.Allow(ctx, "user:1"); !d.Allowed {
		t.Error("window should slide after an hour")
	}
}

func TestRedisWindowUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  0,
	})
	defer client.Close()

	w := NewRedisWindow(client, "contact", 5, time.Hour)
	if _, err := w.Allow(context.Background(), "user:1"); err == nil {
		t.Error("expected an error when redis is unreachable")
	}
}

func TestRedisWindowKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"germanclash:contact", "germanclash:contact:42"},
		{"germanclash:contact:", "germanclash:contact:42"},
		{"contact", "contact:42"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			w := NewRedisWindow(nil, tt.prefix, 5, time.Hour)
			if got := w.key("42"); got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	c := CreateCookie(r, AuthCookie, "v", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly {
		t.Errorf("cookie flags = %+v", c)
	}
	if d := CreateDeleteCookie(r, AuthCookie); d.MaxAge != -1 {
		t.Errorf("delete cookie MaxAge = %d", d.MaxAge)
	}
	if NewID() == NewID() {
		t.Error("NewID() should be random")
	}
}
