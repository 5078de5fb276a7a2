// Package infrastructure assembles the shared systems every domain package
// depends on: logging, lifecycle, persistence, blob storage, OCR, the
// milestone catalog, tracing, and metrics.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/stark/internal/catalog"
	"github.com/JaimeStill/stark/internal/config"
	"github.com/JaimeStill/stark/internal/ocr"
	"github.com/JaimeStill/stark/pkg/database"
	"github.com/JaimeStill/stark/pkg/lifecycle"
	"github.com/JaimeStill/stark/pkg/metrics"
	"github.com/JaimeStill/stark/pkg/storage"
	"github.com/JaimeStill/stark/pkg/tracing"
)

// Infrastructure holds the systems constructed once at startup.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Recognizer ocr.Recognizer
	Catalog    catalog.System
	Tracing    tracing.System
	Metrics    *metrics.Registry
}

// New creates every system from cfg without starting any of them.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	recognizer, err := ocr.New(lc.Context(), &cfg.OCR, logger)
	if err != nil {
		return nil, fmt.Errorf("ocr init failed: %w", err)
	}

	tracer, err := tracing.New(lc.Context(), &cfg.Tracing, cfg.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.New(&cfg.Metrics)
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Recognizer: recognizer,
		Catalog:    catalog.New(&cfg.Catalog, logger),
		Tracing:    tracer,
		Metrics:    registry,
	}, nil
}

// Start registers the startup and shutdown hooks of every system that owns
// external resources.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	i.Lifecycle.Watch("database", i.Database)

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Tracing.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("tracing start failed: %w", err)
	}
	return nil
}
