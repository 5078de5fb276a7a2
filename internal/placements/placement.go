// Package placements implements clinical placements (klinisk tjänstgöring)
// and their full-time-equivalent accounting.
package placements

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultClinic names placements whose certificate did not state a clinic.
const DefaultClinic = "Klinisk tjänstgöring"

// DefaultAttendance is the attendance percentage assumed when none is given.
const DefaultAttendance = 100

// Placement is a period of clinical service at one clinic.
type Placement struct {
	ID                   string    `json:"id"`
	Clinic               string    `json:"clinic"`
	StartDate            string    `json:"startDate"`
	EndDate              string    `json:"endDate"`
	Attendance           int       `json:"attendance"`
	Supervisor           string    `json:"supervisor,omitempty"`
	SupervisorSpeciality string    `json:"supervisorSpeciality,omitempty"`
	SupervisorSite       string    `json:"supervisorSite,omitempty"`
	Note                 string    `json:"note,omitempty"`
	CreatedAt            time.Time `json:"createdAt,omitzero"`
	UpdatedAt            time.Time `json:"updatedAt,omitzero"`
}

// UnmarshalJSON defaults a missing attendance to DefaultAttendance.
func (p *Placement) UnmarshalJSON(data []byte) error {
	type alias Placement
	a := alias{Attendance: DefaultAttendance}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Placement(a)
	return nil
}

// Command carries the writable placement fields for create and replace.
type Command struct {
	Clinic               string `json:"clinic"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	Attendance           *int   `json:"attendance,omitempty"`
	Supervisor           string `json:"supervisor,omitempty"`
	SupervisorSpeciality string `json:"supervisorSpeciality,omitempty"`
	SupervisorSite       string `json:"supervisorSite,omitempty"`
	Note                 string `json:"note,omitempty"`
}

// Validate trims the command, applies defaults and checks the period.
func (c *Command) Validate() error {
	c.Clinic = strings.TrimSpace(c.Clinic)
	if c.Clinic == "" {
		c.Clinic = DefaultClinic
	}

	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return ErrInvalidPeriod
	}
	end, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return ErrInvalidPeriod
	}
	if end.Before(start) {
		return ErrInvalidPeriod
	}

	if c.Attendance == nil {
		v := DefaultAttendance
		c.Attendance = &v
	}
	if *c.Attendance < 0 || *c.Attendance > 100 {
		return ErrInvalidAttendance
	}
	return nil
}

// Placement builds a record with the given id from a validated command.
func (c Command) Placement(id string) Placement {
	attendance := DefaultAttendance
	if c.Attendance != nil {
		attendance = *c.Attendance
	}
	return Placement{
		ID:                   id,
		Clinic:               c.Clinic,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		Attendance:           attendance,
		Supervisor:           c.Supervisor,
		SupervisorSpeciality: c.SupervisorSpeciality,
		SupervisorSite:       c.SupervisorSite,
		Note:                 c.Note,
	}
}
