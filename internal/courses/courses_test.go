package courses_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/schema/schematest"
	"github.com/JaimeStill/stark/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

var pageCfg = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func newSystem(t *testing.T) courses.System {
	return courses.New(schematest.Open(t), slog.New(slog.NewTextHandler(io.Discard, nil)), pageCfg)
}

func TestCommandValidate(t *testing.T) {
	t.Run("defaults and drops start without interval", func(t *testing.T) {
		cmd := courses.Command{StartDate: "2023-01-01", EndDate: "2023-01-05", SigningRole: " Kursledare "}
		if err := cmd.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if cmd.Title != courses.DefaultTitle {
			t.Errorf("Title = %q", cmd.Title)
		}
		if cmd.StartDate != "" {
			t.Errorf("StartDate = %q, want empty when not an interval", cmd.StartDate)
		}
		if cmd.SigningRole != courses.RoleCourseLeader {
			t.Errorf("SigningRole = %q", cmd.SigningRole)
		}
		if c := cmd.Course("x"); !c.ShowOnTimeline {
			t.Error("ShowOnTimeline should default to true")
		}
	})

	tests := []struct {
		name    string
		cmd     courses.Command
		wantErr error
	}{
		{"bad certificate date", courses.Command{CertificateDate: "2023-13-01"}, courses.ErrInvalidDate},
		{"interval reversed", courses.Command{ShowAsInterval: true, StartDate: "2023-02-01", EndDate: "2023-01-01"}, courses.ErrInvalidDate},
		{"unknown role", courses.Command{SigningRole: "rektor"}, courses.ErrInvalidRole},
		{"interval ok", courses.Command{ShowAsInterval: true, StartDate: "2023-01-01", EndDate: "2023-01-02"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCourseJSON(t *testing.T) {
	var c courses.Course
	if err := json.Unmarshal([]byte(`{"id":"c1","title":"Psykoterapi","certificateDate":"2022-05-01"}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.ShowOnTimeline {
		t.Error("missing showOnTimeline should decode as true")
	}
	if c.Date() != "2022-05-01" {
		t.Errorf("Date() = %q", c.Date())
	}

	if got := (courses.Course{EndDate: "2022-06-01"}).Date(); got != "2022-06-01" {
		t.Errorf("Date() fallback = %q", got)
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	c, err := sys.Create(ctx, courses.Command{
		Title:            "Psykofarmakologi",
		City:             "Lund",
		CertificateDate:  "2022-04-01",
		EndDate:          "2022-04-01",
		ShowOnTimeline:   ptr(false),
		SigningRole:      courses.RoleCourseLeader,
		CourseLeaderName: "Eva Ek",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ShowOnTimeline || c.ShowAsInterval || c.CourseLeaderName != "Eva Ek" {
		t.Errorf("Create = %+v", c)
	}

	page, err := sys.List(ctx, pagination.PageRequest{Search: ptr("lund")}, courses.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("List total = %d", page.Total)
	}

	updated, err := sys.Update(ctx, c.ID, courses.Command{Title: "Ledarskap", ShowAsInterval: true, StartDate: "2022-03-01", EndDate: "2022-03-03"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Ledarskap" || updated.StartDate != "2022-03-01" || !updated.ShowOnTimeline {
		t.Errorf("Update = %+v", updated)
	}

	if err := sys.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := sys.Find(ctx, c.ID); !errors.Is(err, courses.ErrNotFound) {
		t.Errorf("Find after delete err = %v", err)
	}
}

func TestDeleteCascadesToAchievements(t *testing.T) {
	db := schematest.Open(t)
	ctx := context.Background()
	sys := courses.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)), pageCfg)

	c, err := sys.Create(ctx, courses.Command{Title: "Etik", CertificateDate: "2021-09-01"})
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []achievements.Achievement{
		{ID: "a1", MilestoneID: "STa2", CourseID: c.ID, Date: "2021-09-01"},
		{ID: "a2", MilestoneID: "STa3", CourseID: "other", Date: "2021-09-01"},
	} {
		if err := achievements.Insert(ctx, db, a); err != nil {
			t.Fatal(err)
		}
	}

	if err := sys.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	left, err := achievements.All(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].ID != "a2" {
		t.Errorf("remaining achievements = %+v", left)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	db := schematest.Open(t)
	ctx := context.Background()

	c := courses.Course{ID: "c1", Title: "Kurs", CertificateDate: "2020-01-01", ShowOnTimeline: true}
	for range 2 {
		if err := courses.Upsert(ctx, db, c); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := courses.All(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("rows = %d, want 1", len(all))
	}
}

type mockSystem struct {
	courses.System
	createFn func(ctx context.Context, cmd courses.Command) (*courses.Course, error)
}

func (m *mockSystem) Create(ctx context.Context, cmd courses.Command) (*courses.Course, error) {
	return m.createFn(ctx, cmd)
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd courses.Command) (*courses.Course, error) {
			if err := cmd.Validate(); err != nil {
				return nil, err
			}
			c := cmd.Course("new")
			return &c, nil
		},
	}
	h := courses.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), pageCfg)

	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"created", `{"title":"Etik","certificateDate":"2021-09-01"}`, http.StatusCreated},
		{"invalid role", `{"title":"Etik","signingRole":"rektor"}`, http.StatusBadRequest},
		{"malformed", `[`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/courses", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
