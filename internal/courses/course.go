// Package courses implements course certificates (kursintyg) and their
// signer details.
package courses

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultTitle names courses whose certificate did not state a subject.
const DefaultTitle = "Kurs"

// Signing roles recorded on a course certificate.
const (
	RoleSupervisor   = "handledare"
	RoleCourseLeader = "kursledare"
)

// Course is a completed course. StartDate is only meaningful when
// ShowAsInterval is set; CertificateDate is the canonical date.
type Course struct {
	ID                       string    `json:"id"`
	Title                    string    `json:"title"`
	City                     string    `json:"city,omitempty"`
	CertificateDate          string    `json:"certificateDate,omitempty"`
	StartDate                string    `json:"startDate,omitempty"`
	EndDate                  string    `json:"endDate,omitempty"`
	Note                     string    `json:"note,omitempty"`
	ShowOnTimeline           bool      `json:"showOnTimeline"`
	ShowAsInterval           bool      `json:"showAsInterval"`
	SigningRole              string    `json:"signingRole,omitempty"`
	SupervisorName           string    `json:"supervisorName,omitempty"`
	SupervisorSite           string    `json:"supervisorSite,omitempty"`
	SupervisorSpeciality     string    `json:"supervisorSpeciality,omitempty"`
	SupervisorPersonalNumber string    `json:"supervisorPersonalNumber,omitempty"`
	CourseLeaderName         string    `json:"courseLeaderName,omitempty"`
	CourseLeaderSite         string    `json:"courseLeaderSite,omitempty"`
	CourseLeaderSpeciality   string    `json:"courseLeaderSpeciality,omitempty"`
	CreatedAt                time.Time `json:"createdAt,omitzero"`
	UpdatedAt                time.Time `json:"updatedAt,omitzero"`
}

// UnmarshalJSON defaults a missing showOnTimeline to true.
func (c *Course) UnmarshalJSON(data []byte) error {
	type alias Course
	a := alias{ShowOnTimeline: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Course(a)
	return nil
}

// Date is the course's canonical date: the certificate date, falling back
// to the end date.
func (c Course) Date() string {
	if c.CertificateDate != "" {
		return c.CertificateDate
	}
	return c.EndDate
}

// Command carries the writable course fields for create and replace.
type Command struct {
	Title                    string `json:"title"`
	City                     string `json:"city,omitempty"`
	CertificateDate          string `json:"certificateDate,omitempty"`
	StartDate                string `json:"startDate,omitempty"`
	EndDate                  string `json:"endDate,omitempty"`
	Note                     string `json:"note,omitempty"`
	ShowOnTimeline           *bool  `json:"showOnTimeline,omitempty"`
	ShowAsInterval           bool   `json:"showAsInterval"`
	SigningRole              string `json:"signingRole,omitempty"`
	SupervisorName           string `json:"supervisorName,omitempty"`
	SupervisorSite           string `json:"supervisorSite,omitempty"`
	SupervisorSpeciality     string `json:"supervisorSpeciality,omitempty"`
	SupervisorPersonalNumber string `json:"supervisorPersonalNumber,omitempty"`
	CourseLeaderName         string `json:"courseLeaderName,omitempty"`
	CourseLeaderSite         string `json:"courseLeaderSite,omitempty"`
	CourseLeaderSpeciality   string `json:"courseLeaderSpeciality,omitempty"`
}

// Validate trims the command, applies defaults and checks dates and role.
// A start date is dropped unless the course is shown as an interval.
func (c *Command) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	c.City = strings.TrimSpace(c.City)

	if !c.ShowAsInterval {
		c.StartDate = ""
	}

	for _, d := range []string{c.CertificateDate, c.StartDate, c.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return ErrInvalidDate
		}
	}
	if c.StartDate != "" && c.EndDate != "" && c.EndDate < c.StartDate {
		return ErrInvalidDate
	}

	c.SigningRole = strings.ToLower(strings.TrimSpace(c.SigningRole))
	switch c.SigningRole {
	case "", RoleSupervisor, RoleCourseLeader:
	default:
		return ErrInvalidRole
	}

	if c.ShowOnTimeline == nil {
		v := true
		c.ShowOnTimeline = &v
	}
	return nil
}

// Course builds a record with the given id from a validated command.
func (c Command) Course(id string) Course {
	show := true
	if c.ShowOnTimeline != nil {
		show = *c.ShowOnTimeline
	}
	return Course{
		ID:                       id,
		Title:                    c.Title,
		City:                     c.City,
		CertificateDate:          c.CertificateDate,
		StartDate:                c.StartDate,
		EndDate:                  c.EndDate,
		Note:                     c.Note,
		ShowOnTimeline:           show,
		ShowAsInterval:           c.ShowAsInterval,
		SigningRole:              c.SigningRole,
		SupervisorName:           c.SupervisorName,
		SupervisorSite:           c.SupervisorSite,
		SupervisorSpeciality:     c.SupervisorSpeciality,
		SupervisorPersonalNumber: c.SupervisorPersonalNumber,
		CourseLeaderName:         c.CourseLeaderName,
		CourseLeaderSite:         c.CourseLeaderSite,
		CourseLeaderSpeciality:   c.CourseLeaderSpeciality,
	}
}
