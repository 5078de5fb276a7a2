package placements

import (
	"context"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

const insertSQL = `
	INSERT INTO placements(id, clinic, start_date, end_date, attendance, supervisor, supervisor_speciality, supervisor_site, note)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const upsertSQL = insertSQL + `
	ON CONFLICT (id) DO UPDATE SET
		clinic = excluded.clinic,
		start_date = excluded.start_date,
		end_date = excluded.end_date,
		attendance = excluded.attendance,
		supervisor = excluded.supervisor,
		supervisor_speciality = excluded.supervisor_speciality,
		supervisor_site = excluded.supervisor_site,
		note = excluded.note,
		updated_at = CURRENT_TIMESTAMP`

func args(p Placement) []any {
	return []any{
		p.ID,
		p.Clinic,
		p.StartDate,
		p.EndDate,
		p.Attendance,
		p.Supervisor,
		p.SupervisorSpeciality,
		p.SupervisorSite,
		p.Note,
	}
}

// Insert writes a new placement on e, which may be a transaction.
func Insert(ctx context.Context, e repository.Executor, p Placement) error {
	return repository.Exec(ctx, e, insertSQL, args(p)...)
}

// Upsert writes p by id, replacing an existing row.
func Upsert(ctx context.Context, e repository.Executor, p Placement) error {
	return repository.Exec(ctx, e, upsertSQL, args(p)...)
}

// Clear removes every placement.
func Clear(ctx context.Context, e repository.Executor) error {
	return repository.Exec(ctx, e, "DELETE FROM placements")
}

// All returns every placement ordered by start date.
func All(ctx context.Context, q repository.Querier) ([]Placement, error) {
	sql, qargs := query.NewBuilder(projection, defaultSort).Build()
	return repository.QueryMany(ctx, q, sql, qargs, scanPlacement)
}
