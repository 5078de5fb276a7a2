package courses

import (
	"net/url"

	"github.com/JaimeStill/stark/pkg/query"
	"github.com/JaimeStill/stark/pkg/repository"
)

var projection = query.
	NewProjectionMap("courses", "c").
	Project("id", "ID").
	Project("title", "Title").
	Project("city", "City").
	Project("certificate_date", "CertificateDate").
	Project("start_date", "StartDate").
	Project("end_date", "EndDate").
	Project("note", "Note").
	Project("show_on_timeline", "ShowOnTimeline").
	Project("show_as_interval", "ShowAsInterval").
	Project("signing_role", "SigningRole").
	Project("supervisor_name", "SupervisorName").
	Project("supervisor_site", "SupervisorSite").
	Project("supervisor_speciality", "SupervisorSpeciality").
	Project("supervisor_personal_number", "SupervisorPersonalNumber").
	Project("course_leader_name", "CourseLeaderName").
	Project("course_leader_site", "CourseLeaderSite").
	Project("course_leader_speciality", "CourseLeaderSpeciality").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CertificateDate"}

// Filters narrows course queries. Title and City match case-insensitively
// as substrings; SigningRole matches exactly.
type Filters struct {
	Title       *string `json:"title,omitempty"`
	City        *string `json:"city,omitempty"`
	SigningRole *string `json:"signingRole,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Title", f.Title).
		WhereContains("City", f.City).
		WhereEquals("SigningRole", f.SigningRole)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("title"); v != "" {
		f.Title = &v
	}
	if v := values.Get("city"); v != "" {
		f.City = &v
	}
	if v := values.Get("signingRole"); v != "" {
		f.SigningRole = &v
	}
	return f
}

func scanCourse(s repository.Scanner) (Course, error) {
	var c Course
	err := s.Scan(
		&c.ID,
		&c.Title,
		&c.City,
		&c.CertificateDate,
		&c.StartDate,
		&c.EndDate,
		&c.Note,
		&c.ShowOnTimeline,
		&c.ShowAsInterval,
		&c.SigningRole,
		&c.SupervisorName,
		&c.SupervisorSite,
		&c.SupervisorSpeciality,
		&c.SupervisorPersonalNumber,
		&c.CourseLeaderName,
		&c.CourseLeaderSite,
		&c.CourseLeaderSpeciality,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
