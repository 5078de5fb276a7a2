package achievements

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/pkg/pagination"
	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates an achievement repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "achievements"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Achievement], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count achievements: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAchievement)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) All(ctx context.Context) ([]Achievement, error) {
	items, err := All(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Achievement, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAchievement)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Achievement, error) {
	if err := cmd.Validate(r.now()); err != nil {
		return nil, err
	}

	a := Achievement{
		ID:          uuid.NewString(),
		MilestoneID: cmd.MilestoneID,
		SubpointID:  cmd.SubpointID,
		PlacementID: cmd.PlacementID,
		CourseID:    cmd.CourseID,
		Date:        cmd.Date,
	}

	if err := Insert(ctx, r.db, a); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("achievement created", "id", a.ID, "milestone", a.MilestoneID)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM achievements WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("achievement deleted", "id", id)
	return nil
}
