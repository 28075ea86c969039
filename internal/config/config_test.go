package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenKey != DefaultTokenKey {
		t.Fatalf("TokenKey = %q", cfg.TokenKey)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no http timeout by default, got %v", cfg.HTTPTimeout)
	}
	if cfg.ExportInterval != 900*time.Second {
		t.Fatalf("ExportInterval = %v", cfg.ExportInterval)
	}
	if cfg.StorageType != "bbolt" {
		t.Fatalf("StorageType = %q", cfg.StorageType)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "https://x.test/app/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("TOKEN_KEY", "other-token")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://x.test/app/" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.TokenKey != "other-token" {
		t.Fatalf("TokenKey = %q", cfg.TokenKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BASE_URL", "not-a-url")
	if _, err := load(viper.New()); err == nil {
		t.Fatalf("expected error for relative base_url")
	}

	t.Setenv("BASE_URL", "https://x.test/")
	t.Setenv("EXPORT_INTERVAL", "0")
	if _, err := load(viper.New()); err == nil {
		t.Fatalf("expected error for zero export_interval")
	}
}
