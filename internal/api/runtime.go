package api

import (
	"github.com/JaimeStill/stark/internal/config"
	"github.com/JaimeStill/stark/internal/infrastructure"
	"github.com/JaimeStill/stark/pkg/middleware"
	"github.com/JaimeStill/stark/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped settings.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	RateLimiter *middleware.RateLimiter
	Config      *config.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		RateLimiter:    middleware.NewRateLimiter(&cfg.API.RateLimit),
		Config:         cfg,
	}
}
