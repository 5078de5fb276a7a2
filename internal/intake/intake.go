// Package intake turns recognized certificates into records. It runs the
// scan through OCR, classifies and extracts the text, and maps confirmed
// fields onto placements, courses and achievements.
package intake

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/stark/internal/certificates"
	"github.com/JaimeStill/stark/internal/dates"
	"github.com/JaimeStill/stark/internal/ocr"
)

// CourseCommand holds the user-confirmed fields of a course certificate.
type CourseCommand struct {
	Title                    string       `json:"title,omitempty"`
	City                     string       `json:"city,omitempty"`
	Description              string       `json:"description,omitempty"`
	Period                   dates.Period `json:"period"`
	Codes                    []string     `json:"codes,omitempty"`
	ShowOnTimeline           *bool        `json:"showOnTimeline,omitempty"`
	ShowAsInterval           bool         `json:"showAsInterval"`
	SigningRole              string       `json:"signingRole,omitempty"`
	SupervisorName           string       `json:"supervisorName,omitempty"`
	SupervisorSite           string       `json:"supervisorSite,omitempty"`
	SupervisorSpeciality     string       `json:"supervisorSpeciality,omitempty"`
	SupervisorPersonalNumber string       `json:"supervisorPersonalNumber,omitempty"`
}

// PlacementCommand holds the user-confirmed fields of a placement
// certificate.
type PlacementCommand struct {
	Clinic               string       `json:"clinic,omitempty"`
	Description          string       `json:"description,omitempty"`
	Period               dates.Period `json:"period"`
	Codes                []string     `json:"codes,omitempty"`
	Attendance           *int         `json:"attendance,omitempty"`
	Supervisor           string       `json:"supervisor,omitempty"`
	SupervisorSpeciality string       `json:"supervisorSpeciality,omitempty"`
	SupervisorSite       string       `json:"supervisorSite,omitempty"`
}

// Draft is a classified certificate awaiting review. Exactly one of
// Course and Placement is prefilled when the kind maps to a record.
type Draft struct {
	ScanID    *uuid.UUID          `json:"scanId,omitempty"`
	Kind      certificates.Kind   `json:"kind"`
	Label     string              `json:"label,omitempty"`
	Record    certificates.Record `json:"record,omitempty"`
	Reason    string              `json:"reason"`
	Language  string              `json:"language,omitempty"`
	Text      string              `json:"text"`
	Fields    certificates.Fields `json:"fields"`
	Course    *CourseCommand      `json:"course,omitempty"`
	Placement *PlacementCommand   `json:"placement,omitempty"`
}

// AnalyzeCommand is text recognized elsewhere, with optional word boxes.
type AnalyzeCommand struct {
	Text  string     `json:"text"`
	Words []ocr.Word `json:"words,omitempty"`
}

// ConfirmCourseCommand maps a course and, when ScanID is set, marks the
// scan it came from.
type ConfirmCourseCommand struct {
	ScanID *uuid.UUID `json:"scanId,omitempty"`
	CourseCommand
}

// ConfirmPlacementCommand maps a placement and, when ScanID is set, marks
// the scan it came from.
type ConfirmPlacementCommand struct {
	ScanID *uuid.UUID `json:"scanId,omitempty"`
	PlacementCommand
}

// Confirmation identifies the record created from a certificate.
type Confirmation struct {
	ID     string              `json:"id"`
	Record certificates.Record `json:"record"`
	ScanID *uuid.UUID          `json:"scanId,omitempty"`
}

// NewDraft classifies text and extracts its fields.
func NewDraft(text string, words []ocr.Word) Draft {
	res := certificates.Classify(text)
	fields := certificates.Extract(res.Kind, text, words)
	info := res.Kind.Info()

	d := Draft{
		Kind:   res.Kind,
		Label:  info.Label,
		Record: info.Record,
		Reason: res.Reason,
		Text:   text,
		Fields: fields,
	}

	switch info.Record {
	case certificates.RecordCourse:
		c := courseFromFields(fields)
		d.Course = &c
	case certificates.RecordPlacement:
		p := placementFromFields(fields)
		d.Placement = &p
	}
	return d
}

func courseFromFields(f certificates.Fields) CourseCommand {
	return CourseCommand{
		Title:                    f.Subject,
		Description:              f.Description,
		Period:                   f.Period,
		Codes:                    f.Codes,
		SigningRole:              f.Signer.Role,
		SupervisorName:           f.Signer.Name,
		SupervisorSite:           f.Signer.Site,
		SupervisorSpeciality:     f.Signer.Speciality,
		SupervisorPersonalNumber: f.Signer.PersonalNumber,
	}
}

func placementFromFields(f certificates.Fields) PlacementCommand {
	clinic := f.Clinic
	if clinic == "" {
		clinic = f.Subject
	}
	return PlacementCommand{
		Clinic:               clinic,
		Description:          f.Description,
		Period:               f.Period,
		Codes:                f.Codes,
		Supervisor:           f.Signer.Name,
		SupervisorSpeciality: f.Signer.Speciality,
		SupervisorSite:       f.Signer.Site,
	}
}
