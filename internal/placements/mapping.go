package placements

import (
	"net/url"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

var projection = query.
	NewProjectionMap("placements", "p").
	Project("id", "ID").
	Project("clinic", "Clinic").
	Project("start_date", "StartDate").
	Project("end_date", "EndDate").
	Project("attendance", "Attendance").
	Project("supervisor", "Supervisor").
	Project("supervisor_speciality", "SupervisorSpeciality").
	Project("supervisor_site", "SupervisorSite").
	Project("note", "Note").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "StartDate"}

// Filters narrows placement queries. Clinic matches case-insensitively as a
// substring; From and To bound the start date inclusively.
type Filters struct {
	Clinic *string `json:"clinic,omitempty"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Clinic", f.Clinic).
		WhereBetween("StartDate", f.From, f.To)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("clinic"); v != "" {
		f.Clinic = &v
	}
	if v := values.Get("from"); v != "" {
		f.From = &v
	}
	if v := values.Get("to"); v != "" {
		f.To = &v
	}
	return f
}

func scanPlacement(s repository.Scanner) (Placement, error) {
	var p Placement
	err := s.Scan(
		&p.ID,
		&p.Clinic,
		&p.StartDate,
		&p.EndDate,
		&p.Attendance,
		&p.Supervisor,
		&p.SupervisorSpeciality,
		&p.SupervisorSite,
		&p.Note,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
