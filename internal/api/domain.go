package api

import (
	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/backup"
	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/intake"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/profile"
	"github.com/JaimeStill/stark/internal/progress"
	"github.com/JaimeStill/stark/internal/scans"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Profile      profile.System
	Placements   placements.System
	Courses      courses.System
	Achievements achievements.System
	Progress     progress.System
	Scans        scans.System
	Intake       intake.System
	Backup       backup.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	logger := runtime.Logger

	scansSystem := scans.New(db, runtime.Storage, logger, runtime.Pagination)

	intakeSystem := intake.New(
		intake.Config{
			Scans:      scansSystem,
			Recognizer: runtime.Recognizer,
			Mapper:     intake.NewMapper(db, runtime.Catalog, logger),
			Tracer:     runtime.Tracing.Tracer("github.com/JaimeStill/stark/internal/intake"),
			Metrics:    runtime.Metrics,
			Language:   runtime.Config.OCR.Language,
		},
		logger,
	)

	return &Domain{
		Profile:      profile.New(db, logger),
		Placements:   placements.New(db, logger, runtime.Pagination),
		Courses:      courses.New(db, logger, runtime.Pagination),
		Achievements: achievements.New(db, logger, runtime.Pagination),
		Progress:     progress.New(db, runtime.Catalog, logger),
		Scans:        scansSystem,
		Intake:       intakeSystem,
		Backup:       backup.New(db, runtime.Storage, &runtime.Config.Backup, runtime.Config.Version, logger),
	}
}

// Start registers the background work owned by domain systems.
func (d *Domain) Start(runtime *Runtime) error {
	runtime.RateLimiter.Start(runtime.Lifecycle)
	return d.Backup.Start(runtime.Lifecycle)
}
