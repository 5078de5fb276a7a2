// Package achievements records which milestone subpoints were satisfied by
// which placement or course.
package achievements

import (
	"strings"
	"time"
)

// Achievement links a milestone, and optionally one of its subpoints, to
// the placement or course that satisfied it. Exactly one of PlacementID and
// CourseID is expected to be set.
type Achievement struct {
	ID          string `json:"id"`
	MilestoneID string `json:"milestoneId"`
	SubpointID  string `json:"subpointId,omitempty"`
	PlacementID string `json:"placementId,omitempty"`
	CourseID    string `json:"courseId,omitempty"`
	Date        string `json:"date"`
}

// CreateCommand carries the data for a new achievement. An empty Date
// defaults to today.
type CreateCommand struct {
	MilestoneID string `json:"milestoneId"`
	SubpointID  string `json:"subpointId,omitempty"`
	PlacementID string `json:"placementId,omitempty"`
	CourseID    string `json:"courseId,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Validate checks the command and fills the date default.
func (c *CreateCommand) Validate(now time.Time) error {
	c.MilestoneID = strings.TrimSpace(c.MilestoneID)
	if c.MilestoneID == "" {
		return ErrInvalid
	}
	if c.Date == "" {
		c.Date = now.Format(time.DateOnly)
	}
	if _, err := time.Parse(time.DateOnly, c.Date); err != nil {
		return ErrInvalid
	}
	return nil
}
