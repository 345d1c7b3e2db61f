package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
	if cfg.LLM.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.LLM.GeminiModel)
	}
	if cfg.PendingScoreSecret != "secret" {
		t.Errorf("PendingScoreSecret should fall back to JWT_SECRET, got %q", cfg.PendingScoreSecret)
	}
	if cfg.OAuthRedirectBaseURL != cfg.AppBaseURL {
		t.Errorf("OAuthRedirectBaseURL = %q, want %q", cfg.OAuthRedirectBaseURL, cfg.AppBaseURL)
	}
	if cfg.GoogleOAuthEnabled() {
		t.Error("Google OAuth should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("EMAIL_DEBUG", "true")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "9000" || cfg.DatabaseType != "postgres" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("LLM.Timeout = %v", cfg.LLM.Timeout)
	}
	if !cfg.EmailDebug || !cfg.GoogleOAuthEnabled() {
		t.Error("overrides not applied")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Error("expected an error for an invalid duration")
	}
}
