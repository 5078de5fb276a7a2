package catalog_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/stark/internal/catalog"
)

func TestParseLayouts(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "milestones object",
			data: `{"specialty":"Psykiatri","version":"2021","milestones":[{"id":"m1","code":"STa1"},{"code":"STb2"}]}`,
			want: []string{"m1", "STb2"},
		},
		{
			name: "specialties tree",
			data: `{"specialties":{"psykiatri":{"2021":{"milestones":[{"code":"STc1"}]}}}}`,
			want: []string{"STc1"},
		},
		{
			name: "specialty keyed",
			data: `{"Psykiatri":{"2015":{"milestones":["a1"]},"2021":{"milestones":["STa1","STa2"]}}}`,
			want: []string{"STa1", "STa2"},
		},
		{
			name: "bare array",
			data: `["STa1", {"kod":"STb1"}, {"title":"no code"}, 7]`,
			want: []string{"STa1", "STb1"},
		},
		{
			name: "version keyed",
			data: "\"2015\":\n  milestones: [a1]\n\"2021\":\n  milestones:\n    - code: STa3\n",
			want: []string{"STa3"},
		},
		{
			name: "unquoted yaml version keys",
			data: "2021:\n  milestones:\n    - STa4\n",
			want: []string{"STa4"},
		},
		{
			name: "unknown layout",
			data: `{"foo":"bar"}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.Parse([]byte(tt.data), "2021", "Psykiatri")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%+v)", len(got), len(tt.want), got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := catalog.Parse([]byte("{not: [valid"), "2021", "Psykiatri"); err == nil {
		t.Error("expected error")
	}
}

func TestParseNormalizesMilestone(t *testing.T) {
	data := `
milestones:
  - kod: stb2
    namn: Ledarskap
    beskrivning: Leda team
    kallaUrl: https://example.org/b2
    sections:
      kompetenskrav: ska kunna leda
      intyg: [a, b]
    subpoints:
      - id: sp1
      - id: sp2
        required: false
      - sp3
`
	got, err := catalog.Parse([]byte(data), "2021", "Psykiatri")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}

	m := got[0]
	if m.ID != "stb2" || m.Code != "stb2" || m.Group != "B" {
		t.Errorf("id/code/group = %q/%q/%q", m.ID, m.Code, m.Group)
	}
	if m.Title != "Ledarskap" || m.Description != "Leda team" || m.SourceURL != "https://example.org/b2" {
		t.Errorf("title/description/source = %q/%q/%q", m.Title, m.Description, m.SourceURL)
	}
	if m.Sections == nil || len(m.Sections.Kompetenskrav) != 1 || len(m.Sections.Intyg) != 2 {
		t.Errorf("sections = %+v", m.Sections)
	}
	if len(m.Subpoints) != 3 {
		t.Fatalf("subpoints = %+v", m.Subpoints)
	}
	if !m.Subpoints[0].IsRequired() || m.Subpoints[1].IsRequired() || !m.Subpoints[2].IsRequired() {
		t.Errorf("required flags = %+v", m.Subpoints)
	}
}

func TestStringEntry(t *testing.T) {
	got, _ := catalog.Parse([]byte(`["c4"]`), "2015", "Psykiatri")
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if m := got[0]; m.ID != "c4" || m.Title != "C4" || m.Group != "C" {
		t.Errorf("milestone = %+v", m)
	}
}

func TestHelpers(t *testing.T) {
	versions := map[string]string{"2021": "2021", "HSLF-FS 2021:8": "2021", "2015": "2015", "": "2015", "x": "2015"}
	for in, want := range versions {
		if got := catalog.NormalizeVersion(in); got != want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}

	if got := catalog.Slug("  Allmän Medicin "); got != "allmänmedicin" {
		t.Errorf("Slug = %q", got)
	}

	groups := map[string]string{"STa1": "A", "stb2": "B", "c10": "C", "ST": "A", "x1": "A", "": "A"}
	for in, want := range groups {
		if got := catalog.GuessGroup(in); got != want {
			t.Errorf("GuessGroup(%q) = %q, want %q", in, got, want)
		}
	}

	if got := catalog.NormalizeCode(" ST a 3 "); got != "sta3" {
		t.Errorf("NormalizeCode = %q", got)
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newLoader(dir string) catalog.System {
	cfg := &catalog.Config{Dir: dir}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return catalog.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2021", "psykiatri.yaml"), "milestones:\n  - id: m-a1\n    code: STa1\n")
	writeFile(t, filepath.Join(dir, "2015", "psykiatri.json"), `{"milestones":[{"code":"a1"}]}`)
	writeFile(t, filepath.Join(dir, "kirurgi.json"), `[{"code":"STa2"}]`)

	l := newLoader(dir)

	t.Run("version directory", func(t *testing.T) {
		c, err := l.Load("2021", "Psykiatri")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if c.Version != "2021" || c.Specialty != "Psykiatri" {
			t.Errorf("version/specialty = %q/%q", c.Version, c.Specialty)
		}
		if id, ok := c.Resolve("STA1"); !ok || id != "m-a1" {
			t.Errorf("Resolve(STA1) = %q, %v", id, ok)
		}
		if _, ok := c.Lookup("m-a1"); !ok {
			t.Error("Lookup by id failed")
		}
		if _, ok := c.Resolve("STZ9"); ok {
			t.Error("unknown code resolved")
		}
	})

	t.Run("default specialty", func(t *testing.T) {
		c, err := l.Load("2015", "")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(c.Milestones) != 1 || c.Milestones[0].Code != "a1" {
			t.Errorf("milestones = %+v", c.Milestones)
		}
	})

	t.Run("root directory fallback", func(t *testing.T) {
		c, err := l.Load("2021", "Kirurgi")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(c.Milestones) != 1 {
			t.Errorf("milestones = %+v", c.Milestones)
		}
	})

	t.Run("other version fallback", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "2015", "ortopedi.json"), `["a2"]`)
		c, err := l.Load("2021", "Ortopedi")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(c.Milestones) != 1 || c.Milestones[0].ID != "a2" {
			t.Errorf("milestones = %+v", c.Milestones)
		}
	})

	t.Run("missing catalog is empty", func(t *testing.T) {
		c, err := l.Load("2021", "Radiologi")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(c.Milestones) != 0 {
			t.Errorf("milestones = %+v", c.Milestones)
		}
		if _, ok := c.Resolve("STa1"); ok {
			t.Error("empty catalog resolved a code")
		}
	})
}
