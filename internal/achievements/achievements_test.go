package achievements_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/schema/schematest"
	"github.com/JaimeStill/stark/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

func newSystem(t *testing.T) (achievements.System, context.Context) {
	db := schematest.Open(t)
	sys := achievements.New(
		db,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	return sys, context.Background()
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", achievements.ErrNotFound, http.StatusNotFound},
		{"duplicate", achievements.ErrDuplicate, http.StatusConflict},
		{"invalid", achievements.ErrInvalid, http.StatusBadRequest},
		{"wrapped", fmt.Errorf("find: %w", achievements.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := achievements.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCreateCommandValidate(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	t.Run("defaults date to today", func(t *testing.T) {
		cmd := achievements.CreateCommand{MilestoneID: " a1 "}
		if err := cmd.Validate(now); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cmd.Date != "2024-03-09" {
			t.Errorf("Date = %q, want 2024-03-09", cmd.Date)
		}
		if cmd.MilestoneID != "a1" {
			t.Errorf("MilestoneID = %q, want trimmed", cmd.MilestoneID)
		}
	})

	t.Run("rejects missing milestone", func(t *testing.T) {
		cmd := achievements.CreateCommand{}
		if err := cmd.Validate(now); !errors.Is(err, achievements.ErrInvalid) {
			t.Errorf("err = %v, want ErrInvalid", err)
		}
	})

	t.Run("rejects bad date", func(t *testing.T) {
		cmd := achievements.CreateCommand{MilestoneID: "a1", Date: "2024-02-30"}
		if err := cmd.Validate(now); !errors.Is(err, achievements.ErrInvalid) {
			t.Errorf("err = %v, want ErrInvalid", err)
		}
	})
}

func TestFiltersFromQuery(t *testing.T) {
	f := achievements.FiltersFromQuery(url.Values{"placementId": {"p1"}})
	if f.PlacementID == nil || *f.PlacementID != "p1" {
		t.Errorf("PlacementID = %v, want p1", f.PlacementID)
	}
	if f.CourseID != nil || f.MilestoneID != nil {
		t.Error("unset params should stay nil")
	}
}

func TestRepository(t *testing.T) {
	sys, ctx := newSystem(t)

	a, err := sys.Create(ctx, achievements.CreateCommand{
		MilestoneID: "STa1",
		PlacementID: "p1",
		Date:        "2023-01-10",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == "" {
		t.Fatal("Create should assign an id")
	}

	if _, err := sys.Create(ctx, achievements.CreateCommand{
		MilestoneID: "STb2",
		CourseID:    "c1",
		Date:        "2023-05-01",
	}); err != nil {
		t.Fatalf("Create course achievement: %v", err)
	}

	found, err := sys.Find(ctx, a.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.PlacementID != "p1" || found.CourseID != "" {
		t.Errorf("Find = %+v", found)
	}

	page, err := sys.List(ctx, pagination.PageRequest{}, achievements.Filters{CourseID: ptr("c1")})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Data[0].MilestoneID != "STb2" {
		t.Errorf("List = %+v", page)
	}

	all, err := sys.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all[0].Date != "2023-05-01" {
		t.Errorf("All should be newest first, got %+v", all)
	}

	if err := sys.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := sys.Delete(ctx, a.ID); !errors.Is(err, achievements.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	if _, err := sys.Find(ctx, a.ID); !errors.Is(err, achievements.ErrNotFound) {
		t.Errorf("Find after delete err = %v, want ErrNotFound", err)
	}
}

func TestStoreHelpers(t *testing.T) {
	db := schematest.Open(t)
	ctx := context.Background()

	rows := []achievements.Achievement{
		{ID: "a1", MilestoneID: "STa1", PlacementID: "p1", Date: "2023-01-01"},
		{ID: "a2", MilestoneID: "STa2", PlacementID: "p1", Date: "2023-01-02"},
		{ID: "a3", MilestoneID: "STb1", CourseID: "c1", Date: "2023-01-03"},
	}
	for _, a := range rows {
		if err := achievements.Insert(ctx, db, a); err != nil {
			t.Fatalf("Insert %s: %v", a.ID, err)
		}
	}

	updated := rows[2]
	updated.MilestoneID = "STb3"
	if err := achievements.Upsert(ctx, db, updated); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := achievements.DeleteForPlacement(ctx, db, "p1"); err != nil {
		t.Fatalf("DeleteForPlacement: %v", err)
	}

	all, err := achievements.All(ctx, db)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0].MilestoneID != "STb3" {
		t.Fatalf("remaining = %+v, want upserted course achievement", all)
	}

	if err := achievements.DeleteForCourse(ctx, db, "c1"); err != nil {
		t.Fatalf("DeleteForCourse: %v", err)
	}
	if err := achievements.Insert(ctx, db, rows[0]); err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if err := achievements.Clear(ctx, db); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if all, _ := achievements.All(ctx, db); len(all) != 0 {
		t.Errorf("after Clear = %d rows", len(all))
	}
}
