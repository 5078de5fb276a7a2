package ocr

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/stark/pkg/formatting"
)

// Supported values for Config.Provider.
const (
	ProviderOCRSpace = "ocrspace"
	ProviderVision   = "vision"
)

// Config selects the OCR provider and its connection settings. Timeout is
// empty by default so the transport default applies.
type Config struct {
	Provider    string       `toml:"provider"`
	APIKey      string       `toml:"api_key"`
	Endpoint    string       `toml:"endpoint"`
	Language    string       `toml:"language"`
	MaxFileSize string       `toml:"max_file_size"`
	Timeout     string       `toml:"timeout"`
	Vision      VisionConfig `toml:"vision"`
}

// VisionConfig holds Google Cloud Vision credentials. An empty file falls
// back to application default credentials.
type VisionConfig struct {
	CredentialsFile string `toml:"credentials_file"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	APIKey                string
	Endpoint              string
	Language              string
	MaxFileSize           string
	Timeout               string
	VisionCredentialsFile string
}

// MaxFileSizeBytes parses MaxFileSize, falling back to 10MB.
func (c *Config) MaxFileSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}

// TimeoutDuration parses Timeout. Zero means no client-side timeout.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Vision.CredentialsFile != "" {
		c.Vision.CredentialsFile = overlay.Vision.CredentialsFile
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOCRSpace
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultOCRSpaceEndpoint
	}
	if c.Language == "" {
		c.Language = "swe+eng"
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = "10MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.APIKey, &c.APIKey)
	set(env.Endpoint, &c.Endpoint)
	set(env.Language, &c.Language)
	set(env.MaxFileSize, &c.MaxFileSize)
	set(env.Timeout, &c.Timeout)
	set(env.VisionCredentialsFile, &c.Vision.CredentialsFile)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOCRSpace, ProviderVision:
	default:
		return fmt.Errorf("unsupported provider: %q", c.Provider)
	}
	if _, err := formatting.ParseBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	return nil
}
