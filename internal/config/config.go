// Package config loads and validates dinodash configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends accepted by storage.backend.
const (
	StorageMemory = "memory"
	StorageLocal  = "local"
	StorageGCS    = "gcs"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Enrich  EnrichConfig  `mapstructure:"enrich"`
	Storage StorageConfig `mapstructure:"storage"`
	DB      DBConfig      `mapstructure:"db"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	ShutdownSeconds       int `mapstructure:"shutdown_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DatasetConfig locates the raw and enriched CSV files.
type DatasetConfig struct {
	RawPath      string `mapstructure:"raw_path"`
	EnrichedPath string `mapstructure:"enriched_path"`
}

// EnrichConfig governs the detail-page scrape.
type EnrichConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DelayMillis    int    `mapstructure:"delay_ms"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	Selector       string `mapstructure:"selector"`
	Attribute      string `mapstructure:"attribute"`

	// RequestsPerSecond caps fetches per host; 0 disables the cap.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig selects the blob backend for exports.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`

	// CacheControl is set on uploaded GCS objects when non-empty.
	CacheControl string `mapstructure:"cache_control"`
}

// DBConfig controls access to the optional Postgres mirror.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int    `mapstructure:"max_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DINODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_seconds", 10)
	v.SetDefault("dataset.raw_path", "data.csv")
	v.SetDefault("dataset.enriched_path", "data_with_images.csv")
	v.SetDefault("enrich.user_agent", "dinodash/0.1")
	v.SetDefault("enrich.timeout_seconds", 15)
	v.SetDefault("enrich.delay_ms", 0)
	v.SetDefault("enrich.respect_robots", false)
	v.SetDefault("enrich.selector", "img.dinosaur--image")
	v.SetDefault("enrich.attribute", "src")
	v.SetDefault("enrich.requests_per_second", 0)
	v.SetDefault("enrich.burst", 1)
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.base_dir", "exports")
	v.SetDefault("storage.prefix", "dinodash")
	v.SetDefault("storage.cache_control", "")
	v.SetDefault("db.table", "dinosaurs")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Dataset.EnrichedPath == "" {
		return fmt.Errorf("dataset.enriched_path must be set")
	}
	if c.Enrich.TimeoutSeconds <= 0 {
		return fmt.Errorf("enrich.timeout_seconds must be > 0")
	}
	if c.Enrich.DelayMillis < 0 {
		return fmt.Errorf("enrich.delay_ms must be >= 0")
	}
	if c.Enrich.RequestsPerSecond < 0 {
		return fmt.Errorf("enrich.requests_per_second must be >= 0")
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageLocal:
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir must be set for the local backend")
		}
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, local, gcs", c.Storage.Backend)
	}
	if c.DB.DSN != "" && !tableNamePattern.MatchString(c.DB.Table) {
		return fmt.Errorf("db.table %q is not a valid identifier", c.DB.Table)
	}
	return nil
}

// EnrichTimeout converts the enrich timeout into a duration.
func (c Config) EnrichTimeout() time.Duration {
	return time.Duration(c.Enrich.TimeoutSeconds) * time.Second
}

// EnrichDelay converts the polite delay into a duration.
func (c Config) EnrichDelay() time.Duration {
	return time.Duration(c.Enrich.DelayMillis) * time.Millisecond
}

// RequestTimeout is the per-request budget of the data service.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout is the drain budget on SIGINT/SIGTERM.
func (c Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}
