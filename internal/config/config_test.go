package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Provider.BaseURL != "http://localhost:5566" {
		t.Errorf("unexpected default base url: %s", cfg.Provider.BaseURL)
	}
	if cfg.Poll.InitialIntervalMS != 1000 || cfg.Poll.MaxIntervalMS != 3000 {
		t.Errorf("unexpected default intervals: %+v", cfg.Poll)
	}
	if cfg.Poll.MaxDurationMS != 100000 {
		t.Errorf("unexpected default max duration: %d", cfg.Poll.MaxDurationMS)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected default log level: %s", cfg.LogLevel)
	}

	// Defaults must be persisted on first load.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not written: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"log_level": "debug", "provider": {"base_url": "http://example.com"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected file value, got %s", cfg.LogLevel)
	}
	if cfg.Provider.BaseURL != "http://example.com" {
		t.Errorf("expected file value, got %s", cfg.Provider.BaseURL)
	}
	// Untouched fields keep their defaults.
	if cfg.Poll.InitialIntervalMS != 1000 {
		t.Errorf("expected default interval, got %d", cfg.Poll.InitialIntervalMS)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	t.Setenv("BARKA_PROVIDER_URL", "http://override:9999")
	t.Setenv("BARKA_PROVIDER_API_KEY", "env-key")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.BaseURL != "http://override:9999" {
		t.Errorf("env override failed: %s", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Errorf("env override failed: %s", cfg.Provider.APIKey)
	}
	if cfg.Telegram.ChatID != 12345 {
		t.Errorf("env override failed: %d", cfg.Telegram.ChatID)
	}
}

func TestGetSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "provider.base_url", "http://new-host:1234"); err != nil {
		t.Fatal(err)
	}
	val, err := GetValue(path, "provider.base_url")
	if err != nil {
		t.Fatal(err)
	}
	if val != "http://new-host:1234" {
		t.Errorf("expected updated value, got %v", val)
	}

	// Numeric coercion
	if err := SetValue(path, "poll.max_interval_ms", "5000"); err != nil {
		t.Fatal(err)
	}
	val, err = GetValue(path, "poll.max_interval_ms")
	if err != nil {
		t.Fatal(err)
	}
	if val != float64(5000) {
		t.Errorf("expected 5000, got %v", val)
	}

	if err := SetValue(path, "poll.max_interval_ms", "not-a-number"); err == nil {
		t.Error("expected type error for non-numeric value")
	}
	if _, err := GetValue(path, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}
