package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/stark/pkg/formatting"
	"github.com/JaimeStill/stark/pkg/middleware"
	"github.com/JaimeStill/stark/pkg/openapi"
	"github.com/JaimeStill/stark/pkg/pagination"
)

const (
	EnvAPIBasePath      = "STARK_API_BASE_PATH"
	EnvAPIMaxUploadSize = "STARK_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "STARK_CORS_ENABLED",
	Origins:          "STARK_CORS_ORIGINS",
	AllowedMethods:   "STARK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "STARK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "STARK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "STARK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "STARK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "STARK_PAGINATION_MAX_PAGE_SIZE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Requests: "STARK_RATE_LIMIT_REQUESTS",
	Window:   "STARK_RATE_LIMIT_WINDOW",
	IdleTTL:  "STARK_RATE_LIMIT_IDLE_TTL",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "STARK_OPENAPI_TITLE",
	Description: "STARK_OPENAPI_DESCRIPTION",
}

// APIConfig holds routing, upload, CORS, pagination, rate limit, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Pagination    pagination.Config          `toml:"pagination"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI       openapi.Config             `toml:"openapi"`
}

// MaxUploadSizeBytes parses MaxUploadSize, falling back to 10MB.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment overrides, and validation for the
// API section and its nested sections.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested sections.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
