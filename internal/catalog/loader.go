package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// System loads catalogs by version and specialty.
type System interface {
	Load(version, specialty string) (*Catalog, error)
}

type loader struct {
	dir       string
	specialty string
	logger    *slog.Logger
}

// New creates a file-backed catalog loader. Catalogs are read on every call
// so edits to the files apply without a restart.
func New(cfg *Config, logger *slog.Logger) System {
	return &loader{
		dir:       cfg.Dir,
		specialty: cfg.Specialty,
		logger:    logger.With("system", "catalog"),
	}
}

var extensions = []string{".json", ".yaml", ".yml"}

// Load reads the catalog for version and specialty. A missing catalog file
// yields an empty catalog, so unknown codes simply resolve to nothing.
func (l *loader) Load(version, specialty string) (*Catalog, error) {
	version = NormalizeVersion(version)
	specialty = strings.TrimSpace(specialty)
	if specialty == "" {
		specialty = l.specialty
	}

	path, err := l.find(version, Slug(specialty))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("catalog not found", "version", version, "specialty", specialty)
			return newCatalog(specialty, version, nil), nil
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	milestones, err := Parse(data, version, specialty)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	l.logger.Debug("catalog loaded", "path", path, "milestones", len(milestones))
	return newCatalog(specialty, version, milestones), nil
}

func (l *loader) find(version, slug string) (string, error) {
	dirs := []string{
		filepath.Join(l.dir, version),
		l.dir,
		filepath.Join(l.dir, Version2015),
		filepath.Join(l.dir, Version2021),
	}

	for _, dir := range dirs {
		for _, ext := range extensions {
			path := filepath.Join(dir, slug+ext)
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", path, err)
			}
		}
	}
	return "", fs.ErrNotExist
}

// Parse decodes catalog data in any of the accepted layouts:
//
//	{milestones: [...]}
//	{specialties: {Name: {"2021": {milestones: [...]}}}}
//	{Name: {"2021": {milestones: [...]}}}
//	[...]
//	{"2015": {milestones: [...]}, "2021": {milestones: [...]}}
//
// JSON is accepted as YAML.
func Parse(data []byte, version, specialty string) ([]Milestone, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if raw == nil {
		return nil, nil
	}

	items, ok := locate(raw, version, specialty)
	if !ok {
		return nil, nil
	}

	out := make([]Milestone, 0, len(items))
	for _, it := range items {
		if m, ok := normalize(it); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func locate(raw any, version, specialty string) ([]any, bool) {
	if list, ok := raw.([]any); ok {
		return list, true
	}

	obj, ok := asMap(raw)
	if !ok {
		return nil, false
	}

	if list, ok := obj["milestones"].([]any); ok {
		return list, true
	}

	if specs, ok := asMap(obj["specialties"]); ok {
		key := matchKey(specs, specialty)
		if key == "" {
			for k := range specs {
				if key == "" || k < key {
					key = k
				}
			}
		}
		if list, ok := bucket(specs[key], version); ok {
			return list, true
		}
	}

	if key := matchKey(obj, specialty); key != "" {
		if list, ok := bucket(obj[key], version); ok {
			return list, true
		}
	}

	return bucket(raw, version)
}

func bucket(v any, version string) ([]any, bool) {
	m, ok := asMap(v)
	if !ok {
		return nil, false
	}
	inner, ok := asMap(m[version])
	if !ok {
		return nil, false
	}
	list, ok := inner["milestones"].([]any)
	return list, ok
}

func matchKey(m map[string]any, want string) string {
	for k := range m {
		if strings.EqualFold(k, want) {
			return k
		}
	}
	return ""
}

func normalize(it any) (Milestone, bool) {
	if s, ok := it.(string); ok {
		code := strings.TrimSpace(s)
		if code == "" {
			return Milestone{}, false
		}
		return Milestone{
			ID:        code,
			Code:      code,
			Group:     GuessGroup(code),
			Title:     strings.ToUpper(code),
			Subpoints: []Subpoint{},
		}, true
	}

	obj, ok := asMap(it)
	if !ok {
		return Milestone{}, false
	}

	code := strings.TrimSpace(first(obj, "code", "kod", "id"))
	if code == "" {
		return Milestone{}, false
	}

	m := Milestone{
		ID:          first(obj, "id"),
		Code:        code,
		Group:       strings.ToUpper(first(obj, "group")),
		Title:       first(obj, "title", "label", "namn"),
		Description: first(obj, "description", "beskrivning"),
		SourceURL:   first(obj, "sourceUrl", "kallaUrl"),
		Subpoints:   subpoints(obj["subpoints"]),
	}
	if m.ID == "" {
		m.ID = code
	}
	if m.Group == "" {
		m.Group = GuessGroup(code)
	}
	if m.Title == "" {
		m.Title = code
	}
	if sec, ok := asMap(obj["sections"]); ok {
		m.Sections = &Sections{
			Kompetenskrav:          texts(sec["kompetenskrav"]),
			Utbildningsaktiviteter: texts(sec["utbildningsaktiviteter"]),
			Intyg:                  texts(sec["intyg"]),
			AllmannaRad:            texts(sec["allmannaRad"]),
		}
	}
	return m, true
}

func subpoints(v any) []Subpoint {
	list, _ := v.([]any)
	out := make([]Subpoint, 0, len(list))
	for _, it := range list {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, Subpoint{ID: s})
			continue
		}
		obj, ok := asMap(it)
		if !ok {
			continue
		}
		sp := Subpoint{ID: first(obj, "id")}
		if sp.ID == "" {
			continue
		}
		if b, ok := obj["required"].(bool); ok {
			sp.Required = &b
		}
		out = append(out, sp)
	}
	return out
}

// first returns the first non-empty scalar among keys, as text.
func first(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case int, int64, float64:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func texts(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, x := range t {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// asMap accepts both decoded mapping forms yaml.v3 produces.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}
