package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SPHERE_API_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SphereAPIURL != "" {
		t.Fatalf("expected default sphere api url empty, got %s", cfg.SphereAPIURL)
	}
	if cfg.SphereAPITimeout != 20*time.Second {
		t.Fatalf("expected default sphere api timeout, got %s", cfg.SphereAPITimeout)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SessionCookieName != "sphere_session" {
		t.Fatalf("expected default session cookie name, got %s", cfg.SessionCookieName)
	}
	if !cfg.SessionSecure {
		t.Fatalf("expected session cookies secure by default")
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SPHERE_API_URL", "https://api.ubietysphere.example/v1/")
	t.Setenv("SPHERE_API_TIMEOUT", "45s")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_SECURE", "false")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ubietysphere.example, https://staging.ubietysphere.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.SphereAPIURL != "https://api.ubietysphere.example/v1" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.SphereAPIURL)
	}
	if cfg.SphereAPITimeout != 45*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.SphereAPITimeout)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if cfg.SessionSecure {
		t.Fatalf("expected session secure disabled")
	}
	if cfg.StripePublishableKey != "pk_test_123" {
		t.Fatalf("expected stripe key override, got %s", cfg.StripePublishableKey)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://staging.ubietysphere.example" {
		t.Fatalf("expected CORS origins parsed and trimmed, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("SPHERE_API_TIMEOUT", "not-a-duration")
	cfg := Load()
	if cfg.SphereAPITimeout != 20*time.Second {
		t.Fatalf("expected fallback to default on invalid duration, got %s", cfg.SphereAPITimeout)
	}
}
