package achievements

import (
	"net/url"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

var projection = query.
	NewProjectionMap("achievements", "a").
	Project("id", "ID").
	Project("milestone_id", "MilestoneID").
	Project("subpoint_id", "SubpointID").
	Project("placement_id", "PlacementID").
	Project("course_id", "CourseID").
	Project("achieved_on", "Date")

var defaultSort = query.SortField{Field: "Date", Descending: true}

// Filters narrows achievement queries by exact id matches.
type Filters struct {
	MilestoneID *string `json:"milestoneId,omitempty"`
	PlacementID *string `json:"placementId,omitempty"`
	CourseID    *string `json:"courseId,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("MilestoneID", f.MilestoneID).
		WhereEquals("PlacementID", f.PlacementID).
		WhereEquals("CourseID", f.CourseID)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("milestoneId"); v != "" {
		f.MilestoneID = &v
	}
	if v := values.Get("placementId"); v != "" {
		f.PlacementID = &v
	}
	if v := values.Get("courseId"); v != "" {
		f.CourseID = &v
	}
	return f
}

func scanAchievement(s repository.Scanner) (Achievement, error) {
	var a Achievement
	err := s.Scan(
		&a.ID,
		&a.MilestoneID,
		&a.SubpointID,
		&a.PlacementID,
		&a.CourseID,
		&a.Date,
	)
	return a, err
}
