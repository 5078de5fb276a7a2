package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/profile"
	"github.com/JaimeStill/stark/pkg/lifecycle"
	"github.com/JaimeStill/stark/pkg/repository"
	"github.com/JaimeStill/stark/pkg/storage"
)

// Result counts what an import wrote.
type Result struct {
	Mode         Mode `json:"mode"`
	Profile      bool `json:"profile"`
	Placements   int  `json:"placements"`
	Courses      int  `json:"courses"`
	Achievements int  `json:"achievements"`
}

// System exports and imports bundles.
type System interface {
	Handler() *Handler

	Export(ctx context.Context) (*Bundle, error)
	// Import migrates b and writes it in a single transaction.
	Import(ctx context.Context, b *Bundle, mode Mode) (*Result, error)
	// Snapshot exports to blob storage and returns the key written.
	Snapshot(ctx context.Context) (string, error)
	// Start runs scheduled snapshots until shutdown.
	Start(lc *lifecycle.Coordinator) error
}

type repo struct {
	db      *sql.DB
	storage storage.System
	cfg     Config
	version string
	logger  *slog.Logger
	now     func() time.Time
}

// New creates the backup system. version is recorded in exported bundles.
func New(db *sql.DB, store storage.System, cfg *Config, version string, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		cfg:     *cfg,
		version: version,
		logger:  logger.With("system", "backup"),
		now:     time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.cfg.MaxSizeBytes())
}

// Export reads the four collections concurrently.
func (r *repo) Export(ctx context.Context) (*Bundle, error) {
	b := &Bundle{
		SchemaVersion: SchemaVersion,
		App:           App{Name: AppName, Version: r.version},
		ExportedAt:    r.now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := profile.Get(ctx, r.db)
		if err != nil {
			return fmt.Errorf("export profile: %w", err)
		}
		b.Profile = p
		return nil
	})
	g.Go(func() error {
		ps, err := placements.All(ctx, r.db)
		if err != nil {
			return fmt.Errorf("export placements: %w", err)
		}
		b.Placements = ps
		return nil
	})
	g.Go(func() error {
		cs, err := courses.All(ctx, r.db)
		if err != nil {
			return fmt.Errorf("export courses: %w", err)
		}
		b.Courses = cs
		return nil
	})
	g.Go(func() error {
		as, err := achievements.All(ctx, r.db)
		if err != nil {
			return fmt.Errorf("export achievements: %w", err)
		}
		b.Achievements = as
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if b.Placements == nil {
		b.Placements = []placements.Placement{}
	}
	if b.Courses == nil {
		b.Courses = []courses.Course{}
	}
	if b.Achievements == nil {
		b.Achievements = []achievements.Achievement{}
	}
	return b, nil
}

func (r *repo) Import(ctx context.Context, b *Bundle, mode Mode) (*Result, error) {
	if mode != ModeReplace && mode != ModeMerge {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	Migrate(b)

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Result, error) {
		if mode == ModeReplace {
			if err := clearAll(ctx, tx); err != nil {
				return nil, err
			}
		}
		return write(ctx, tx, b, mode)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"backup imported",
		"mode", mode,
		"placements", res.Placements,
		"courses", res.Courses,
		"achievements", res.Achievements,
	)
	return res, nil
}

func clearAll(ctx context.Context, tx *sql.Tx) error {
	if err := achievements.Clear(ctx, tx); err != nil {
		return fmt.Errorf("clear achievements: %w", err)
	}
	if err := courses.Clear(ctx, tx); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}
	if err := placements.Clear(ctx, tx); err != nil {
		return fmt.Errorf("clear placements: %w", err)
	}
	if err := profile.Clear(ctx, tx); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

// write upserts every record of b by id. Repeated ids within a bundle
// collapse to the last occurrence.
func write(ctx context.Context, tx *sql.Tx, b *Bundle, mode Mode) (*Result, error) {
	res := &Result{Mode: mode}

	if b.Profile != nil {
		if err := profile.Put(ctx, tx, b.Profile); err != nil {
			return nil, fmt.Errorf("write profile: %w", err)
		}
		res.Profile = true
	}

	for _, p := range b.Placements {
		if err := placements.Upsert(ctx, tx, p); err != nil {
			return nil, fmt.Errorf("write placement %s: %w", p.ID, err)
		}
		res.Placements++
	}
	for _, c := range b.Courses {
		if err := courses.Upsert(ctx, tx, c); err != nil {
			return nil, fmt.Errorf("write course %s: %w", c.ID, err)
		}
		res.Courses++
	}
	for _, a := range b.Achievements {
		if err := achievements.Upsert(ctx, tx, a); err != nil {
			return nil, fmt.Errorf("write achievement %s: %w", a.ID, err)
		}
		res.Achievements++
	}
	return res, nil
}
