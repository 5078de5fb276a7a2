package backup

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/stark/pkg/formatting"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config controls bundle imports and scheduled exports. An empty Schedule
// disables scheduled exports.
type Config struct {
	Schedule string `toml:"schedule"`
	Prefix   string `toml:"prefix"`
	MaxSize  string `toml:"max_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Schedule string
	Prefix   string
	MaxSize  string
}

// MaxSizeBytes parses MaxSize. Invalid values fall back to 10MB.
func (c *Config) MaxSizeBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
}

func (c *Config) loadDefaults() {
	if c.Prefix == "" {
		c.Prefix = "backups"
	}
	if c.MaxSize == "" {
		c.MaxSize = "10MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Schedule != "" {
		if v := os.Getenv(env.Schedule); v != "" {
			c.Schedule = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
	if env.MaxSize != "" {
		if v := os.Getenv(env.MaxSize); v != "" {
			c.MaxSize = v
		}
	}
}

func (c *Config) validate() error {
	if c.Schedule != "" {
		if _, err := scheduleParser.Parse(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
		}
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	if c.Prefix == "" || strings.Contains(c.Prefix, "..") {
		return fmt.Errorf("invalid prefix: %q", c.Prefix)
	}
	if _, err := formatting.ParseBytes(c.MaxSize); err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	return nil
}
