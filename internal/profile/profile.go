// Package profile stores the single user profile that selects the active
// milestone catalog.
package profile

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/JaimeStill/stark/internal/catalog"
)

// ID is the fixed key of the singleton profile row.
const ID = "default"

// Profile describes the resident. GoalsVersion and Specialty choose the
// milestone catalog.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name,omitempty"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	PersonalNumber string    `json:"personalNumber,omitempty"`
	Specialty      string    `json:"specialty,omitempty"`
	GoalsVersion   string    `json:"goalsVersion,omitempty"`
	StartDate      string    `json:"startDate,omitempty"`
	HomeClinic     string    `json:"homeClinic,omitempty"`
	Locked         bool      `json:"locked"`
	PreviousNames  []string  `json:"previousNames,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// UnmarshalJSON accepts the legacy "speciality" key when "specialty" is absent.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type alias Profile
	aux := struct {
		*alias
		Speciality string `json:"speciality"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.Specialty == "" {
		p.Specialty = aux.Speciality
	}
	return nil
}

// Normalize pins the id, trims text fields, derives Name from the name
// parts when missing and folds GoalsVersion to a catalog version.
func (p *Profile) Normalize() {
	p.ID = ID
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	p.Specialty = strings.TrimSpace(p.Specialty)
	p.GoalsVersion = catalog.NormalizeVersion(p.GoalsVersion)
	if p.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, p.StartDate); err != nil {
			p.StartDate = ""
		}
	}
}
