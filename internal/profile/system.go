package profile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// System reads and replaces the profile.
type System interface {
	Handler() *Handler

	Get(ctx context.Context) (*Profile, error)
	Put(ctx context.Context, p Profile) (*Profile, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "profile"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Get(ctx context.Context) (*Profile, error) {
	p, err := Get(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Put replaces the profile. A locked profile only accepts an update that
// clears the lock.
func (r *repo) Put(ctx context.Context, p Profile) (*Profile, error) {
	current, err := Get(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if current != nil && current.Locked && p.Locked {
		return nil, ErrLocked
	}

	if err := Put(ctx, r.db, &p); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	r.logger.Info("profile saved", "specialty", p.Specialty, "goals_version", p.GoalsVersion)
	return r.Get(ctx)
}
