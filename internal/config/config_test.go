package config

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected development, got %s", cfg.Environment)
	}
	if cfg.Views.LocationTimeout != 10*time.Second {
		t.Errorf("unexpected location timeout: %s", cfg.Views.LocationTimeout)
	}
	if cfg.Views.IdleTTL != 30*time.Minute {
		t.Errorf("unexpected idle ttl: %s", cfg.Views.IdleTTL)
	}
	if cfg.Views.MaxPerOwner != 8 || cfg.Views.MaxActive != 10000 {
		t.Errorf("unexpected activation caps: %+v", cfg.Views)
	}
	if cfg.Log.Level != "info" || cfg.Log.File != "" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Locale.Default != "en" {
		t.Errorf("unexpected default locale: %s", cfg.Locale.Default)
	}
	if cfg.Session.CookieSecure {
		t.Errorf("cookies must not be secure-only in development")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                       "9999",
		"TOURDOXA_ENV":               "Production",
		"TOURDOXA_SESSION_HASH_KEY":  strings.Repeat("h", 32),
		"TOURDOXA_SESSION_BLOCK_KEY": "base64:" + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 16))),
		"TOURDOXA_LOCATION_TIMEOUT":  "3",
		"TOURDOXA_VIEW_IDLE_TTL":     "5m",
		"TOURDOXA_LOG_LEVEL":         "DEBUG",
		"TOURDOXA_READ_TIMEOUT":      "20s",
		"TOURDOXA_SITE_URL":          "https://tourdoxa.in",
		"TOURDOXA_VIEW_MAX_ACTIVE":   "500",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Addr)
	}
	if !cfg.IsProduction() || !cfg.Session.CookieSecure {
		t.Errorf("expected production with secure cookies")
	}
	if cfg.Views.LocationTimeout != 3*time.Second {
		t.Errorf("expected bare integer as seconds, got %s", cfg.Views.LocationTimeout)
	}
	if cfg.Views.IdleTTL != 5*time.Minute || cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected durations: %+v %+v", cfg.Views, cfg.Server)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level %s", cfg.Log.Level)
	}
	if cfg.Server.SiteURL != "https://tourdoxa.in" {
		t.Errorf("unexpected site url %q", cfg.Server.SiteURL)
	}
	if cfg.Views.MaxActive != 500 {
		t.Errorf("unexpected activation cap %d", cfg.Views.MaxActive)
	}
	if len(cfg.Session.BlockKey) != 16 {
		t.Errorf("unexpected block key length %d", len(cfg.Session.BlockKey))
	}

	env["TOURDOXA_HTTP_ADDR"] = "127.0.0.1:7000"
	cfg, err = Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("explicit addr should win over PORT, got %s", cfg.Server.Addr)
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"TOURDOXA_ENV":                  "production",
		"TOURDOXA_SESSION_BLOCK_KEY":    "short",
		"TOURDOXA_LOG_LEVEL":            "verbose",
		"TOURDOXA_VIEW_MAX_PER_SESSION": "0",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"Session.HashKey": true, "Session.BlockKey": true, "Log.Level": true, "Views.MaxPerOwner": true}
	for _, f := range vErr.Fields() {
		delete(want, f)
	}
	if len(want) != 0 {
		t.Fatalf("missing fields %v in %v", want, vErr.Fields())
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nTOURDOXA_HTTP_ADDR=:8181\nexport TOURDOXA_LOG_FILE=\"/tmp/tourdoxa.log\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"TOURDOXA_LOG_LEVEL": "warn"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != ":8181" {
		t.Errorf("expected addr from .env, got %s", cfg.Server.Addr)
	}
	if cfg.Log.File != "/tmp/tourdoxa.log" || cfg.Log.Level != "warn" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}

	if _, err := Load(WithEnvFile(filepath.Join(dir, "missing.env")), WithoutSystemEnv()); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}
}
