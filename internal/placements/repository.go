package placements

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

// New creates a placement repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "placements"),
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
) (*pagination.PageResult[Placement], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Clinic", "Supervisor", "Note")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count placements: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPlacement)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Placement, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPlacement)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Placement, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p := cmd.Placement(uuid.NewString())
	if err := Insert(ctx, r.db, p); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("placement created", "id", p.ID, "clinic", p.Clinic)
	return r.Find(ctx, p.ID)
}

func (r *repo) Update(ctx context.Context, id string, cmd Command) (*Placement, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p := cmd.Placement(id)
	q := `
		UPDATE placements SET
			clinic = $1, start_date = $2, end_date = $3, attendance = $4,
			supervisor = $5, supervisor_speciality = $6, supervisor_site = $7, note = $8,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $9`

	err := repository.ExecExpectOne(
		ctx, r.db, q,
		p.Clinic, p.StartDate, p.EndDate, p.Attendance,
		p.Supervisor, p.SupervisorSpeciality, p.SupervisorSite, p.Note,
		id,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("placement updated", "id", id)
	return r.Find(ctx, id)
}

// Delete removes the placement and the achievements linked to it.
func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := achievements.DeleteForPlacement(ctx, tx, id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM placements WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("placement deleted", "id", id)
	return nil
}

func (r *repo) Summary(ctx context.Context) (*Summary, error) {
	ps, err := All(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	s := Summarize(ps)
	return &s, nil
}
