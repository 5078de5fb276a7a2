package achievements

import (
	"context"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

// These helpers run on a *sql.DB or inside a caller's *sql.Tx, so the
// intake mapper and backup import can group writes across domains.

const insertSQL = `
	INSERT INTO achievements(id, milestone_id, subpoint_id, placement_id, course_id, achieved_on)
	VALUES ($1, $2, $3, $4, $5, $6)`

const upsertSQL = insertSQL + `
	ON CONFLICT (id) DO UPDATE SET
		milestone_id = excluded.milestone_id,
		subpoint_id = excluded.subpoint_id,
		placement_id = excluded.placement_id,
		course_id = excluded.course_id,
		achieved_on = excluded.achieved_on`

func args(a Achievement) []any {
	return []any{a.ID, a.MilestoneID, a.SubpointID, a.PlacementID, a.CourseID, a.Date}
}

// Insert writes a new achievement.
func Insert(ctx context.Context, e repository.Executor, a Achievement) error {
	return repository.Exec(ctx, e, insertSQL, args(a)...)
}

// Upsert writes a by id, replacing any existing row.
func Upsert(ctx context.Context, e repository.Executor, a Achievement) error {
	return repository.Exec(ctx, e, upsertSQL, args(a)...)
}

// Clear removes every achievement.
func Clear(ctx context.Context, e repository.Executor) error {
	return repository.Exec(ctx, e, "DELETE FROM achievements")
}

// DeleteForPlacement removes the achievements linked to a placement.
func DeleteForPlacement(ctx context.Context, e repository.Executor, placementID string) error {
	return repository.Exec(ctx, e, "DELETE FROM achievements WHERE placement_id = $1", placementID)
}

// DeleteForCourse removes the achievements linked to a course.
func DeleteForCourse(ctx context.Context, e repository.Executor, courseID string) error {
	return repository.Exec(ctx, e, "DELETE FROM achievements WHERE course_id = $1", courseID)
}

// All returns every achievement, newest first.
func All(ctx context.Context, q repository.Querier) ([]Achievement, error) {
	sql, qargs := query.NewBuilder(projection, defaultSort).Build()
	return repository.QueryMany(ctx, q, sql, qargs, scanAchievement)
}
