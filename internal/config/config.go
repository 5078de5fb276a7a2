// Package config loads the service configuration from config.toml, an
// optional environment overlay, and STARK_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/stark/internal/backup"
	"github.com/JaimeStill/stark/internal/catalog"
	"github.com/JaimeStill/stark/internal/ocr"
	"github.com/JaimeStill/stark/pkg/database"
	"github.com/JaimeStill/stark/pkg/metrics"
	"github.com/JaimeStill/stark/pkg/storage"
	"github.com/JaimeStill/stark/pkg/tracing"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvStarkEnv             = "STARK_ENV"
	EnvStarkShutdownTimeout = "STARK_SHUTDOWN_TIMEOUT"
	EnvStarkVersion         = "STARK_VERSION"
)

var databaseEnv = &database.Env{
	Driver:          "STARK_DB_DRIVER",
	Path:            "STARK_DB_PATH",
	Host:            "STARK_DB_HOST",
	Port:            "STARK_DB_PORT",
	Name:            "STARK_DB_NAME",
	User:            "STARK_DB_USER",
	Password:        "STARK_DB_PASSWORD",
	SSLMode:         "STARK_DB_SSL_MODE",
	MaxOpenConns:    "STARK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "STARK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "STARK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "STARK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "STARK_STORAGE_PROVIDER",
	Container:        "STARK_STORAGE_CONTAINER",
	ConnectionString: "STARK_STORAGE_CONNECTION_STRING",
	Endpoint:         "STARK_STORAGE_ENDPOINT",
	AccessKey:        "STARK_STORAGE_ACCESS_KEY",
	SecretKey:        "STARK_STORAGE_SECRET_KEY",
	Region:           "STARK_STORAGE_REGION",
	UseSSL:           "STARK_STORAGE_USE_SSL",
}

var ocrEnv = &ocr.Env{
	Provider:              "STARK_OCR_PROVIDER",
	APIKey:                "STARK_OCR_API_KEY",
	Endpoint:              "STARK_OCR_ENDPOINT",
	Language:              "STARK_OCR_LANGUAGE",
	MaxFileSize:           "STARK_OCR_MAX_FILE_SIZE",
	Timeout:               "STARK_OCR_TIMEOUT",
	VisionCredentialsFile: "STARK_OCR_VISION_CREDENTIALS_FILE",
}

var catalogEnv = &catalog.Env{
	Dir:       "STARK_CATALOG_DIR",
	Specialty: "STARK_CATALOG_SPECIALTY",
}

var backupEnv = &backup.Env{
	Schedule: "STARK_BACKUP_SCHEDULE",
	Prefix:   "STARK_BACKUP_PREFIX",
	MaxSize:  "STARK_BACKUP_MAX_SIZE",
}

var tracingEnv = &tracing.Env{
	Enabled:     "STARK_TRACING_ENABLED",
	Exporter:    "STARK_TRACING_EXPORTER",
	Endpoint:    "STARK_TRACING_ENDPOINT",
	Insecure:    "STARK_TRACING_INSECURE",
	SampleRatio: "STARK_TRACING_SAMPLE_RATIO",
	ServiceName: "STARK_TRACING_SERVICE_NAME",
}

var metricsEnv = &metrics.Env{
	Enabled:   "STARK_METRICS_ENABLED",
	Path:      "STARK_METRICS_PATH",
	Namespace: "STARK_METRICS_NAMESPACE",
}

// Config is the root configuration for the ST-ARK service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	OCR             ocr.Config      `toml:"ocr"`
	Catalog         catalog.Config  `toml:"catalog"`
	Backup          backup.Config   `toml:"backup"`
	Tracing         tracing.Config  `toml:"tracing"`
	Metrics         metrics.Config  `toml:"metrics"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the STARK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvStarkEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads config.toml when present, merges the STARK_ENV overlay, and
// finalizes every section. Without any file, defaults and environment
// variables supply the whole configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML bytes into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.OCR.Merge(&overlay.OCR)
	c.Catalog.Merge(&overlay.Catalog)
	c.Backup.Merge(&overlay.Backup)
	c.Tracing.Merge(&overlay.Tracing)
	c.Metrics.Merge(&overlay.Metrics)
}

// Finalize applies defaults, environment overrides, and validation to every
// section in turn.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"ocr", func() error { return c.OCR.Finalize(ocrEnv) }},
		{"catalog", func() error { return c.Catalog.Finalize(catalogEnv) }},
		{"backup", func() error { return c.Backup.Finalize(backupEnv) }},
		{"tracing", func() error { return c.Tracing.Finalize(tracingEnv) }},
		{"metrics", func() error { return c.Metrics.Finalize(metricsEnv) }},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvStarkShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvStarkVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvStarkEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
