// Package backup exports and imports the complete record set as a single
// JSON bundle.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JaimeStill/stark/internal/achievements"
	"github.com/JaimeStill/stark/internal/courses"
	"github.com/JaimeStill/stark/internal/placements"
	"github.com/JaimeStill/stark/internal/profile"
)

const (
	// SchemaVersion is the bundle layout written by Export.
	SchemaVersion = 1
	AppName       = "ST-ARK"
)

// Mode selects how an import treats existing records.
type Mode string

const (
	// ModeReplace clears every collection before writing the bundle.
	ModeReplace Mode = "replace"
	// ModeMerge upserts by id and leaves unlisted records alone.
	ModeMerge Mode = "merge"
)

// ParseMode validates s. An empty string means replace.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeReplace:
		return ModeReplace, nil
	case ModeMerge:
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

type App struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Bundle is the backup document.
type Bundle struct {
	SchemaVersion int                        `json:"schemaVersion"`
	App           App                        `json:"app"`
	ExportedAt    time.Time                  `json:"exportedAt"`
	Profile       *profile.Profile           `json:"profile"`
	Placements    []placements.Placement     `json:"placements"`
	Courses       []courses.Course           `json:"courses"`
	Achievements  []achievements.Achievement `json:"achievements"`
}

var knownKeys = []string{
	"schemaVersion", "app", "exportedAt",
	"profile", "placements", "courses", "achievements",
}

// Parse decodes and checks a bundle without touching storage. Any shape
// problem is reported as ErrInvalidBundle. A limit of zero disables the
// size check.
func Parse(data []byte, limit int64) (*Bundle, error) {
	if limit > 0 && int64(len(data)) > limit {
		return nil, invalid("bundle is %d bytes, limit %d", len(data), limit)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, invalid("bundle must be a JSON object")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, invalid("decode bundle: %v", err)
	}

	found := false
	for _, k := range knownKeys {
		if _, ok := raw[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil, invalid("no backup collections found")
	}

	var b Bundle

	if v, ok := raw["schemaVersion"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &b.SchemaVersion); err != nil {
			return nil, invalid("schemaVersion must be an integer")
		}
		if b.SchemaVersion > SchemaVersion {
			return nil, invalid("schemaVersion %d is newer than supported %d", b.SchemaVersion, SchemaVersion)
		}
	}
	if v, ok := raw["app"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &b.App); err != nil {
			return nil, invalid("app: %v", err)
		}
	}
	if v, ok := raw["exportedAt"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &b.ExportedAt); err != nil {
			return nil, invalid("exportedAt: %v", err)
		}
	}
	if v, ok := raw["profile"]; ok && !isNull(v) {
		var p profile.Profile
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, invalid("profile: %v", err)
		}
		b.Profile = &p
	}

	if err := decodeList(raw, "placements", &b.Placements); err != nil {
		return nil, err
	}
	if err := decodeList(raw, "courses", &b.Courses); err != nil {
		return nil, err
	}
	if err := decodeList(raw, "achievements", &b.Achievements); err != nil {
		return nil, err
	}

	for i, p := range b.Placements {
		if p.ID == "" {
			return nil, invalid("placements[%d] has no id", i)
		}
	}
	for i, c := range b.Courses {
		if c.ID == "" {
			return nil, invalid("courses[%d] has no id", i)
		}
	}
	for i, a := range b.Achievements {
		if a.ID == "" {
			return nil, invalid("achievements[%d] has no id", i)
		}
		if a.MilestoneID == "" {
			return nil, invalid("achievements[%d] has no milestoneId", i)
		}
	}

	return &b, nil
}

// Migrate raises b to the current schema version and pins the profile id.
// Bundles without a version are treated as version 0.
func Migrate(b *Bundle) {
	// Version 0 and 1 share a layout.
	b.SchemaVersion = SchemaVersion

	if b.Profile != nil {
		b.Profile.ID = profile.ID
	}
}

func decodeList[T any](raw map[string]json.RawMessage, key string, dst *[]T) error {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return invalid("%s: %v", key, err)
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidBundle, fmt.Sprintf(format, args...))
}
