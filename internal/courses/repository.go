package courses

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/pkg/pagination"
	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a course repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "courses"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Course], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "City", "Note")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCourse)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Course, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCourse)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Course, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c := cmd.Course(uuid.NewString())
	if err := Insert(ctx, r.db, c); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("course created", "id", c.ID, "title", c.Title)
	return r.Find(ctx, c.ID)
}

// Update replaces every writable field of the course.
func (r *repo) Update(ctx context.Context, id string, cmd Command) (*Course, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c := cmd.Course(id)
	q := `
		UPDATE courses SET
			title = $1, city = $2, certificate_date = $3, start_date = $4, end_date = $5, note = $6,
			show_on_timeline = $7, show_as_interval = $8, signing_role = $9,
			supervisor_name = $10, supervisor_site = $11, supervisor_speciality = $12, supervisor_personal_number = $13,
			course_leader_name = $14, course_leader_site = $15, course_leader_speciality = $16,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $17`

	updateArgs := append(args(c)[1:], id)
	if err := repository.ExecExpectOne(ctx, r.db, q, updateArgs...); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("course updated", "id", id)
	return r.Find(ctx, id)
}

// Delete removes the course and the achievements linked to it.
func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := achievements.DeleteForCourse(ctx, tx, id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM courses WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("course deleted", "id", id)
	return nil
}
