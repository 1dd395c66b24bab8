package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 4*time.Hour {
		t.Errorf("expected default session TTL 4h, got %v", cfg.SessionTTL)
	}
	if cfg.NewsletterConcurrency != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.NewsletterConcurrency)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ANON_KEY", "anon-prod")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %v", cfg.SessionTTL)
	}
}

func TestLoad_MissingAdminCredential(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when no admin credential is configured")
	}
}

func TestLoad_RejectsDevSecretsOutsideDevMode(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("DEV_MODE", "false")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected SESSION_SECRET error, got %v", err)
	}

	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ANON_KEY") {
		t.Fatalf("expected ANON_KEY error, got %v", err)
	}

	t.Setenv("ANON_KEY", "anon-prod")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with real secrets: %v", err)
	}
}

func TestValidate_RejectsZeroConcurrency(t *testing.T) {
	cfg := Config{AdminPassword: "x", DevMode: true, SessionTTL: time.Hour, NewsletterConcurrency: 0, RateLimitPerMinute: 1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero concurrency")
	}
}

func TestLoadDB_IgnoresServerSettings(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/folio")

	cfg, err := LoadDB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/folio" {
		t.Errorf("unexpected DATABASE_URL %q", cfg.DatabaseURL)
	}
}
