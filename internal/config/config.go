package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	BaseURL            string        `mapstructure:"base_url"`
	Token              string        `mapstructure:"token"`
	TokenKey           string        `mapstructure:"token_key"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	HTTPDebug          bool          `mapstructure:"http_debug"`

	SourcesFile           string        `mapstructure:"sources_file"`
	PublishersFile        string        `mapstructure:"publishers_file"`
	ExportIntervalSeconds int64         `mapstructure:"export_interval"`
	ExportInterval        time.Duration `mapstructure:"-"`
	EnrichMetadata        bool          `mapstructure:"enrich_metadata"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// DefaultTokenKey is the storage key the bearer token lives under.
const DefaultTokenKey = "bookmark-token"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "bookmark-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "http://127.0.0.1:38112/")
	v.SetDefault("token", "")
	v.SetDefault("token_key", DefaultTokenKey)
	v.SetDefault("http_timeout_seconds", 0)
	v.SetDefault("http_debug", false)
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("export_interval", 900) // seconds
	v.SetDefault("enrich_metadata", true)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/bookmark.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("invalid base_url %q (must be an absolute URL)", cfg.BaseURL)
	}
	if strings.TrimSpace(cfg.TokenKey) == "" {
		cfg.TokenKey = DefaultTokenKey
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.ExportIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid export_interval (must be positive seconds)")
	}
	cfg.ExportInterval = time.Duration(cfg.ExportIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
