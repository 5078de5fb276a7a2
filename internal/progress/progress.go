// Package progress derives milestone completion from achievements.
package progress

import (
	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/catalog"
)

// Status is the derived completion state of a milestone.
type Status string

const (
	StatusNone       Status = "Ej"
	StatusInProgress Status = "Pågår"
	StatusFulfilled  Status = "Uppfyllt"
)

// Progress is the completion of one milestone.
type Progress struct {
	MilestoneID string `json:"milestoneId"`
	Code        string `json:"code,omitempty"`
	Group       string `json:"group,omitempty"`
	Title       string `json:"title,omitempty"`
	Completed   int    `json:"completed"`
	Required    int    `json:"required"`
	Status      Status `json:"status"`
}

// Compute counts the required subpoints of m that appear among achs for the
// same milestone. Sources are pooled and duplicates count once.
func Compute(m catalog.Milestone, achs []achievements.Achievement) Progress {
	done := make(map[string]struct{})
	for _, a := range achs {
		if a.MilestoneID == m.ID && a.SubpointID != "" {
			done[a.SubpointID] = struct{}{}
		}
	}

	p := Progress{
		MilestoneID: m.ID,
		Code:        m.Code,
		Group:       m.Group,
		Title:       m.Title,
	}
	for _, sp := range m.Subpoints {
		if !sp.IsRequired() {
			continue
		}
		p.Required++
		if _, ok := done[sp.ID]; ok {
			p.Completed++
		}
	}
	p.Status = status(p.Completed, p.Required)
	return p
}

func status(completed, required int) Status {
	switch {
	case required == 0:
		return StatusFulfilled
	case completed == 0:
		return StatusNone
	case completed < required:
		return StatusInProgress
	default:
		return StatusFulfilled
	}
}
