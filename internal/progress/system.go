package progress

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/catalog"
	"github.com/JaimeStill/stark/internal/profile"
)

// Overview is the progress of every milestone in the active catalog.
type Overview struct {
	Specialty  string     `json:"specialty"`
	Version    string     `json:"version"`
	Milestones []Progress `json:"milestones"`
	Fulfilled  int        `json:"fulfilled"`
}

// System computes progress against the catalog selected by the profile.
type System interface {
	Handler() *Handler

	Catalog(ctx context.Context, version, specialty string) (*catalog.Catalog, error)
	Overview(ctx context.Context) (*Overview, error)
}

type system struct {
	db      *sql.DB
	catalog catalog.System
	logger  *slog.Logger
}

func New(db *sql.DB, cat catalog.System, logger *slog.Logger) System {
	return &system{
		db:      db,
		catalog: cat,
		logger:  logger.With("system", "progress"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Catalog loads the catalog for version and specialty, taking whichever is
// empty from the stored profile.
func (s *system) Catalog(ctx context.Context, version, specialty string) (*catalog.Catalog, error) {
	if version == "" || specialty == "" {
		p, err := profile.Get(ctx, s.db)
		if err != nil {
			return nil, fmt.Errorf("query profile: %w", err)
		}
		if p != nil {
			if version == "" {
				version = p.GoalsVersion
			}
			if specialty == "" {
				specialty = p.Specialty
			}
		}
	}

	cat, err := s.catalog.Load(version, specialty)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func (s *system) Overview(ctx context.Context) (*Overview, error) {
	cat, err := s.Catalog(ctx, "", "")
	if err != nil {
		return nil, err
	}

	achs, err := achievements.All(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}

	o := &Overview{
		Specialty:  cat.Specialty,
		Version:    cat.Version,
		Milestones: make([]Progress, 0, len(cat.Milestones)),
	}
	for _, m := range cat.Milestones {
		p := Compute(m, achs)
		if p.Status == StatusFulfilled {
			o.Fulfilled++
		}
		o.Milestones = append(o.Milestones, p)
	}
	return o, nil
}
