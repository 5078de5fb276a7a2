package catalog

import (
	"fmt"
	"os"
	"strings"
)

// Config locates milestone catalog files.
type Config struct {
	Dir       string `toml:"dir"`
	Specialty string `toml:"specialty"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Dir       string
	Specialty string
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
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
	if overlay.Specialty != "" {
		c.Specialty = overlay.Specialty
	}
}

func (c *Config) loadDefaults() {
	if c.Dir == "" {
		c.Dir = "catalog"
	}
	if c.Specialty == "" {
		c.Specialty = DefaultSpecialty
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Dir != "" {
		if v := os.Getenv(env.Dir); v != "" {
			c.Dir = v
		}
	}
	if env.Specialty != "" {
		if v := os.Getenv(env.Specialty); v != "" {
			c.Specialty = v
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("dir required")
	}
	return nil
}
