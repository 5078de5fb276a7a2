package courses

import (
	"context"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

const columns = `id, title, city, certificate_date, start_date, end_date, note,
		show_on_timeline, show_as_interval, signing_role,
		supervisor_name, supervisor_site, supervisor_speciality, supervisor_personal_number,
		course_leader_name, course_leader_site, course_leader_speciality`

const insertSQL = `
	INSERT INTO courses(` + columns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

const upsertSQL = insertSQL + `
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		city = excluded.city,
		certificate_date = excluded.certificate_date,
		start_date = excluded.start_date,
		end_date = excluded.end_date,
		note = excluded.note,
		show_on_timeline = excluded.show_on_timeline,
		show_as_interval = excluded.show_as_interval,
		signing_role = excluded.signing_role,
		supervisor_name = excluded.supervisor_name,
		supervisor_site = excluded.supervisor_site,
		supervisor_speciality = excluded.supervisor_speciality,
		supervisor_personal_number = excluded.supervisor_personal_number,
		course_leader_name = excluded.course_leader_name,
		course_leader_site = excluded.course_leader_site,
		course_leader_speciality = excluded.course_leader_speciality,
		updated_at = CURRENT_TIMESTAMP`

func args(c Course) []any {
	return []any{
		c.ID,
		c.Title,
		c.City,
		c.CertificateDate,
		c.StartDate,
		c.EndDate,
		c.Note,
		c.ShowOnTimeline,
		c.ShowAsInterval,
		c.SigningRole,
		c.SupervisorName,
		c.SupervisorSite,
		c.SupervisorSpeciality,
		c.SupervisorPersonalNumber,
		c.CourseLeaderName,
		c.CourseLeaderSite,
		c.CourseLeaderSpeciality,
	}
}

// Insert writes a new course on e, which may be a transaction.
func Insert(ctx context.Context, e repository.Executor, c Course) error {
	return repository.Exec(ctx, e, insertSQL, args(c)...)
}

// Upsert writes c by id, replacing an existing row.
func Upsert(ctx context.Context, e repository.Executor, c Course) error {
	return repository.Exec(ctx, e, upsertSQL, args(c)...)
}

// Clear removes every course.
func Clear(ctx context.Context, e repository.Executor) error {
	return repository.Exec(ctx, e, "DELETE FROM courses")
}

// All returns every course ordered by certificate date.
func All(ctx context.Context, q repository.Querier) ([]Course, error) {
	sql, qargs := query.NewBuilder(projection, defaultSort).Build()
	return repository.QueryMany(ctx, q, sql, qargs, scanCourse)
}
