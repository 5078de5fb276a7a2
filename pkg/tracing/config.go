package tracing

import (
	"fmt"
	"os"
	"strconv"
)

// Supported values for Config.Exporter.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config controls OpenTelemetry trace export.
type Config struct {
	Enabled     bool    `toml:"enabled"`
	Exporter    string  `toml:"exporter"`
	Endpoint    string  `toml:"endpoint"`
	Insecure    bool    `toml:"insecure"`
	SampleRatio float64 `toml:"sample_ratio"`
	ServiceName string  `toml:"service_name"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled     string
	Exporter    string
	Endpoint    string
	Insecure    string
	SampleRatio string
	ServiceName string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Boolean fields always apply.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	c.Insecure = overlay.Insecure
	if overlay.Exporter != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.SampleRatio != 0 {
		c.SampleRatio = overlay.SampleRatio
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
}

func (c *Config) loadDefaults() {
	if c.Exporter == "" {
		c.Exporter = ExporterStdout
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
	if c.ServiceName == "" {
		c.ServiceName = "stark"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Enabled); env.Enabled != "" && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(env.Exporter); env.Exporter != "" && v != "" {
		c.Exporter = v
	}
	if v := os.Getenv(env.Endpoint); env.Endpoint != "" && v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(env.Insecure); env.Insecure != "" && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Insecure = b
		}
	}
	if v := os.Getenv(env.SampleRatio); env.SampleRatio != "" && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SampleRatio = f
		}
	}
	if v := os.Getenv(env.ServiceName); env.ServiceName != "" && v != "" {
		c.ServiceName = v
	}
}

func (c *Config) validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1]: %v", c.SampleRatio)
	}
	switch c.Exporter {
	case ExporterStdout:
	case ExporterOTLP:
		if c.Enabled && c.Endpoint == "" {
			return fmt.Errorf("endpoint required for otlp exporter")
		}
	default:
		return fmt.Errorf("unsupported exporter: %q", c.Exporter)
	}
	return nil
}
