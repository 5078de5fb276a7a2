package backup_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/stark/internal/backup"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/profile"
	"github.com/JaimeStill/stark/internal/schema/schematest"
	"github.com/JaimeStill/stark/pkg/lifecycle"
	"github.com/JaimeStill/stark/pkg/storage"
)

const bundleJSON = `{
  "schemaVersion": 1,
  "app": {"name": "ST-ARK", "version": "1.0.0"},
  "exportedAt": "2024-05-01T10:00:00.000Z",
  "profile": {"id": "other", "name": "Anna Berg", "speciality": "Psykiatri", "goalsVersion": "2021"},
  "placements": [
    {"id": "p1", "clinic": "Psykiatriska kliniken", "startDate": "2022-01-01", "endDate": "2022-06-30"}
  ],
  "courses": [
    {"id": "c1", "title": "Psykoterapi", "city": "Lund", "certificateDate": "2022-03-05"}
  ],
  "achievements": [
    {"id": "a1", "milestoneId": "m-a1", "placementId": "p1", "date": "2022-06-30"},
    {"id": "a2", "milestoneId": "m-c3", "courseId": "c1", "date": "2022-03-05"}
  ]
}`

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func newSystem(t *testing.T) (backup.System, *sql.DB, *memStore) {
	t.Helper()
	cfg := &backup.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	db := schematest.Open(t)
	store := &memStore{blobs: map[string][]byte{}}
	return backup.New(db, store, cfg, "test", discard()), db, store
}

func parse(t *testing.T, s string) *backup.Bundle {
	t.Helper()
	b, err := backup.Parse([]byte(s), 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return b
}

// records drops timestamps so exports from separate runs compare equal.
func records(t *testing.T, sys backup.System) *backup.Bundle {
	t.Helper()
	b, err := sys.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	b.ExportedAt = time.Time{}
	if b.Profile != nil {
		b.Profile.UpdatedAt = time.Time{}
	}
	for i := range b.Placements {
		b.Placements[i].CreatedAt, b.Placements[i].UpdatedAt = time.Time{}, time.Time{}
	}
	for i := range b.Courses {
		b.Courses[i].CreatedAt, b.Courses[i].UpdatedAt = time.Time{}, time.Time{}
	}
	return b
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int64
	}{
		{"array", `[1, 2]`, 0},
		{"string", `"backup"`, 0},
		{"malformed", `{"placements": [`, 0},
		{"unknown keys only", `{"foo": 1}`, 0},
		{"future schema", `{"schemaVersion": 2, "placements": []}`, 0},
		{"schema not a number", `{"schemaVersion": "one"}`, 0},
		{"placements not a list", `{"placements": {"id": "p1"}}`, 0},
		{"placement without id", `{"placements": [{"clinic": "X"}]}`, 0},
		{"course without id", `{"courses": [{"title": "X"}]}`, 0},
		{"achievement without milestone", `{"achievements": [{"id": "a1"}]}`, 0},
		{"too large", `{"placements": []}`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backup.Parse([]byte(tt.input), tt.limit)
			if !errors.Is(err, backup.ErrInvalidBundle) {
				t.Errorf("Parse() = %v, want ErrInvalidBundle", err)
			}
		})
	}
}

func TestParseAccepts(t *testing.T) {
	b := parse(t, `{"placements": [{"id": "p1", "clinic": "X", "startDate": "2020-01-01", "endDate": "2020-01-31"}], "profile": null}`)

	if b.SchemaVersion != 0 {
		t.Errorf("SchemaVersion = %d, want 0 before migration", b.SchemaVersion)
	}
	if b.Profile != nil {
		t.Error("null profile should stay nil")
	}
	if len(b.Placements) != 1 || b.Placements[0].Attendance != placements.DefaultAttendance {
		t.Errorf("Placements = %+v", b.Placements)
	}

	backup.Migrate(b)
	if b.SchemaVersion != backup.SchemaVersion {
		t.Errorf("migrated SchemaVersion = %d", b.SchemaVersion)
	}
}

func TestMigratePinsProfileID(t *testing.T) {
	b := parse(t, bundleJSON)
	if b.Profile.Specialty != "Psykiatri" {
		t.Errorf("legacy speciality not read: %+v", b.Profile)
	}

	backup.Migrate(b)
	if b.Profile.ID != profile.ID {
		t.Errorf("profile id = %q, want %q", b.Profile.ID, profile.ID)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    backup.Mode
		wantErr bool
	}{
		{"", backup.ModeReplace, false},
		{"replace", backup.ModeReplace, false},
		{"merge", backup.ModeMerge, false},
		{"append", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := backup.ParseMode(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
			}
			if tt.wantErr && !errors.Is(err, backup.ErrInvalidMode) {
				t.Errorf("err = %v, want ErrInvalidMode", err)
			}
		})
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	ctx := context.Background()

	once, _, _ := newSystem(t)
	twice, _, _ := newSystem(t)

	if _, err := once.Import(ctx, parse(t, bundleJSON), backup.ModeMerge); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if _, err := twice.Import(ctx, parse(t, bundleJSON), backup.ModeMerge); err != nil {
			t.Fatal(err)
		}
	}

	a, b := records(t, once), records(t, twice)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("merge twice differs from merge once:\n%+v\n%+v", a, b)
	}
}

func TestMergeKeepsUnlisted(t *testing.T) {
	ctx := context.Background()
	sys, db, _ := newSystem(t)

	extra := placements.Placement{ID: "keep", Clinic: "Akuten", StartDate: "2021-01-01", EndDate: "2021-01-31", Attendance: 50}
	if err := placements.Insert(ctx, db, extra); err != nil {
		t.Fatal(err)
	}

	res, err := sys.Import(ctx, parse(t, bundleJSON), backup.ModeMerge)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Profile || res.Placements != 1 || res.Courses != 1 || res.Achievements != 2 {
		t.Errorf("Result = %+v", res)
	}

	if got := records(t, sys); len(got.Placements) != 2 {
		t.Errorf("placements = %d, want 2", len(got.Placements))
	}
}

func TestReplaceClearsExisting(t *testing.T) {
	ctx := context.Background()
	sys, db, _ := newSystem(t)

	extra := placements.Placement{ID: "gone", Clinic: "Akuten", StartDate: "2021-01-01", EndDate: "2021-01-31", Attendance: 100}
	if err := placements.Insert(ctx, db, extra); err != nil {
		t.Fatal(err)
	}

	if _, err := sys.Import(ctx, parse(t, bundleJSON), backup.ModeReplace); err != nil {
		t.Fatal(err)
	}

	got := records(t, sys)
	if len(got.Placements) != 1 || got.Placements[0].ID != "p1" {
		t.Errorf("placements = %+v", got.Placements)
	}
	if got.Profile == nil || got.Profile.ID != profile.ID || got.Profile.GoalsVersion != "2021" {
		t.Errorf("profile = %+v", got.Profile)
	}
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _, _ := newSystem(t)
	if _, err := src.Import(ctx, parse(t, bundleJSON), backup.ModeReplace); err != nil {
		t.Fatal(err)
	}

	exported, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if exported.SchemaVersion != backup.SchemaVersion || exported.App.Name != backup.AppName || exported.App.Version != "test" {
		t.Errorf("header = %d %+v", exported.SchemaVersion, exported.App)
	}

	data, err := json.Marshal(exported)
	if err != nil {
		t.Fatal(err)
	}

	dst, _, _ := newSystem(t)
	if _, err := dst.Import(ctx, parse(t, string(data)), backup.ModeReplace); err != nil {
		t.Fatal(err)
	}

	if a, b := records(t, src), records(t, dst); !reflect.DeepEqual(a, b) {
		t.Errorf("round trip differs:\n%+v\n%+v", a, b)
	}
}

func TestExportEmpty(t *testing.T) {
	sys, _, _ := newSystem(t)

	b, err := sys.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(b)
	for _, want := range []string{`"profile":null`, `"placements":[]`, `"courses":[]`, `"achievements":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("export missing %s: %s", want, data)
		}
	}
}

func TestSnapshot(t *testing.T) {
	sys, _, store := newSystem(t)

	key, err := sys.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !strings.HasPrefix(key, "backups/") || !strings.HasSuffix(key, ".json") {
		t.Errorf("key = %q", key)
	}

	ok, _ := store.Exists(context.Background(), key)
	if !ok {
		t.Fatal("snapshot not uploaded")
	}
	store.mu.Lock()
	data := store.blobs[key]
	store.mu.Unlock()
	if _, err := backup.Parse(data, 0); err != nil {
		t.Errorf("snapshot does not parse: %v", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     backup.Config
		wantErr bool
	}{
		{"defaults", backup.Config{}, false},
		{"daily", backup.Config{Schedule: "0 3 * * *"}, false},
		{"descriptor", backup.Config{Schedule: "@weekly"}, false},
		{"bad schedule", backup.Config{Schedule: "every night"}, true},
		{"traversal prefix", backup.Config{Prefix: "../etc"}, true},
		{"bad size", backup.Config{MaxSize: "lots"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := backup.Config{}
	cfg.Finalize(nil)
	if cfg.Prefix != "backups" || cfg.MaxSizeBytes() != 10*1024*1024 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestHandler(t *testing.T) {
	sys, _, _ := newSystem(t)
	mux := http.NewServeMux()
	g := sys.Handler().Routes()
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+g.Prefix+r.Pattern, r.Handler)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"export", http.MethodGet, "/backup", "", http.StatusOK},
		{"merge", http.MethodPost, "/backup?mode=merge", bundleJSON, http.StatusOK},
		{"replace", http.MethodPost, "/backup", bundleJSON, http.StatusOK},
		{"bad mode", http.MethodPost, "/backup?mode=append", bundleJSON, http.StatusBadRequest},
		{"bad bundle", http.MethodPost, "/backup", `[]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.method == http.MethodGet && !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
				t.Error("export is not an attachment")
			}
		})
	}
}
