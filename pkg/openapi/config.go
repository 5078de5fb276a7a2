package openapi

import "os"

const (
	defaultTitle       = "ST-ARK API"
	defaultDescription = "Residency training records, certificate intake, and progress tracking."
)

// Config sets the info block of the generated document.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
}

type field struct {
	dst      *string
	def, key string
}

func (c *Config) fields(env *ConfigEnv) []field {
	if env == nil {
		env = &ConfigEnv{}
	}
	return []field{
		{&c.Title, defaultTitle, env.Title},
		{&c.Description, defaultDescription, env.Description},
	}
}

// Finalize fills blanks with defaults, then applies env overrides. It
// never fails.
func (c *Config) Finalize(env *ConfigEnv) error {
	for _, f := range c.fields(env) {
		if *f.dst == "" {
			*f.dst = f.def
		}
		if f.key == "" {
			continue
		}
		if v := os.Getenv(f.key); v != "" {
			*f.dst = v
		}
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}
