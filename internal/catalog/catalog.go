// Package catalog loads the versioned milestone catalogs that achievements
// and progress are measured against.
package catalog

import (
	"errors"
	"strings"
)

const (
	Version2015      = "2015"
	Version2021      = "2021"
	DefaultSpecialty = "Psykiatri"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Subpoint is an individually achievable part of a milestone. Required is
// nil when the catalog does not say, which counts as required.
type Subpoint struct {
	ID       string `json:"id" yaml:"id"`
	Required *bool  `json:"required,omitempty" yaml:"required,omitempty"`
}

// IsRequired reports whether the subpoint counts toward completion.
func (s Subpoint) IsRequired() bool {
	return s.Required == nil || *s.Required
}

// Sections holds the regulatory text blocks of a milestone.
type Sections struct {
	Kompetenskrav          []string `json:"kompetenskrav,omitempty"`
	Utbildningsaktiviteter []string `json:"utbildningsaktiviteter,omitempty"`
	Intyg                  []string `json:"intyg,omitempty"`
	AllmannaRad            []string `json:"allmannaRad,omitempty"`
}

// Milestone is one competency goal of a catalog.
type Milestone struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Group       string     `json:"group"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Sections    *Sections  `json:"sections,omitempty"`
	SourceURL   string     `json:"sourceUrl,omitempty"`
	Subpoints   []Subpoint `json:"subpoints"`
}

// Catalog is the milestone list for one specialty and version.
type Catalog struct {
	Specialty  string      `json:"specialty"`
	Version    string      `json:"version"`
	Milestones []Milestone `json:"milestones"`

	index map[string]int
}

func newCatalog(specialty, version string, milestones []Milestone) *Catalog {
	c := &Catalog{
		Specialty:  specialty,
		Version:    version,
		Milestones: milestones,
		index:      make(map[string]int, 2*len(milestones)),
	}
	if c.Milestones == nil {
		c.Milestones = []Milestone{}
	}
	for i, m := range milestones {
		c.index[m.ID] = i
		c.index[NormalizeCode(m.Code)] = i
	}
	return c
}

// Lookup finds a milestone by id or by code. Code matching ignores case and
// whitespace.
func (c *Catalog) Lookup(key string) (Milestone, bool) {
	if c == nil {
		return Milestone{}, false
	}
	i, ok := c.index[key]
	if !ok {
		i, ok = c.index[NormalizeCode(key)]
	}
	if !ok {
		return Milestone{}, false
	}
	return c.Milestones[i], true
}

// Resolve returns the milestone id for a code.
func (c *Catalog) Resolve(code string) (string, bool) {
	m, ok := c.Lookup(code)
	return m.ID, ok
}

// NormalizeCode folds a milestone code for lookups.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), ""))
}

// NormalizeVersion maps a stored goals version to "2015" or "2021".
func NormalizeVersion(raw string) string {
	if strings.Contains(raw, Version2021) {
		return Version2021
	}
	return Version2015
}

// Slug builds the file name stem for a specialty.
func Slug(specialty string) string {
	return strings.ToLower(strings.Join(strings.Fields(specialty), ""))
}

// GuessGroup derives the A, B or C group from a code such as "STb2" or "c4".
func GuessGroup(code string) string {
	s := strings.TrimSpace(code)
	if len(s) >= 2 && strings.EqualFold(s[:2], "st") {
		s = s[2:]
	}
	if s != "" {
		switch g := strings.ToUpper(s[:1]); g {
		case "A", "B", "C":
			return g
		}
	}
	return "A"
}
