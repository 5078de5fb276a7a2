package progress_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/catalog"
	"github.com/JaimeStill/stark/internal/profile"
	"github.com/JaimeStill/stark/internal/progress"
	"github.com/JaimeStill/stark/internal/schema/schematest"
)

func optional() *bool {
	f := false
	return &f
}

func TestCompute(t *testing.T) {
	m := catalog.Milestone{
		ID:   "a1",
		Code: "STa1",
		Subpoints: []catalog.Subpoint{
			{ID: "a1-1"},
			{ID: "a1-2"},
			{ID: "a1-3", Required: optional()},
		},
	}

	tests := []struct {
		name      string
		m         catalog.Milestone
		achs      []achievements.Achievement
		completed int
		required  int
		status    progress.Status
	}{
		{"no subpoints is fulfilled", catalog.Milestone{ID: "b1"}, nil, 0, 0, progress.StatusFulfilled},
		{"nothing achieved", m, nil, 0, 2, progress.StatusNone},
		{
			"one of two",
			m,
			[]achievements.Achievement{{MilestoneID: "a1", SubpointID: "a1-1"}},
			1, 2, progress.StatusInProgress,
		},
		{
			"duplicates count once",
			m,
			[]achievements.Achievement{
				{MilestoneID: "a1", SubpointID: "a1-1", PlacementID: "p1"},
				{MilestoneID: "a1", SubpointID: "a1-1", CourseID: "c1"},
			},
			1, 2, progress.StatusInProgress,
		},
		{
			"optional subpoint ignored",
			m,
			[]achievements.Achievement{{MilestoneID: "a1", SubpointID: "a1-3"}},
			0, 2, progress.StatusNone,
		},
		{
			"other milestone ignored",
			m,
			[]achievements.Achievement{{MilestoneID: "a2", SubpointID: "a1-1"}},
			0, 2, progress.StatusNone,
		},
		{
			"pooled sources fulfil",
			m,
			[]achievements.Achievement{
				{MilestoneID: "a1", SubpointID: "a1-1", PlacementID: "p1"},
				{MilestoneID: "a1", SubpointID: "a1-2", CourseID: "c1"},
			},
			2, 2, progress.StatusFulfilled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progress.Compute(tt.m, tt.achs)
			if got.Completed != tt.completed || got.Required != tt.required || got.Status != tt.status {
				t.Errorf("Compute = %d/%d %s, want %d/%d %s",
					got.Completed, got.Required, got.Status,
					tt.completed, tt.required, tt.status)
			}
			if got.MilestoneID != tt.m.ID {
				t.Errorf("MilestoneID = %q", got.MilestoneID)
			}
		})
	}
}

const catalogJSON = `{
  "specialty": "Psykiatri",
  "version": "2021",
  "milestones": [
    {"id": "a1", "code": "STa1", "title": "Etik", "subpoints": [{"id": "a1-1"}, {"id": "a1-2"}]},
    {"id": "c1", "code": "STc1", "title": "Psykiatrisk bedömning"}
  ]
}`

func TestOverview(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "2021"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2021", "psykiatri.json"), []byte(catalogJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := schematest.Open(t)
	ctx := context.Background()

	if err := profile.Put(ctx, db, &profile.Profile{Specialty: "Psykiatri", GoalsVersion: "2021"}); err != nil {
		t.Fatal(err)
	}
	if err := achievements.Insert(ctx, db, achievements.Achievement{ID: "x", MilestoneID: "a1", SubpointID: "a1-2", Date: "2022-01-01"}); err != nil {
		t.Fatal(err)
	}

	sys := progress.New(db, catalog.New(&catalog.Config{Dir: dir, Specialty: catalog.DefaultSpecialty}, logger), logger)

	o, err := sys.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if o.Version != "2021" || len(o.Milestones) != 2 {
		t.Fatalf("Overview = %+v", o)
	}
	if o.Milestones[0].Status != progress.StatusInProgress {
		t.Errorf("a1 status = %s", o.Milestones[0].Status)
	}
	if o.Milestones[1].Status != progress.StatusFulfilled || o.Fulfilled != 1 {
		t.Errorf("c1 = %+v, fulfilled = %d", o.Milestones[1], o.Fulfilled)
	}

	cat, err := sys.Catalog(ctx, "2015", "")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if cat.Version != "2015" {
		t.Errorf("explicit version ignored: %s", cat.Version)
	}
}
