// Package dates finds calendar dates in noisy OCR text and separates a
// service period from the place name it is printed next to.
package dates

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"time"
)

const (
	sep     = `[./\-\s]+`
	ymd     = `\b(\d{4})` + sep + `(\d{1,2})` + sep + `(\d{1,2})\b`
	dmy     = `\b(\d{1,2})` + sep + `(\d{1,2})` + sep + `(\d{2,4})\b`
	token   = `(?:` + ymd + `|` + dmy + `)`
	rangeOp = `(?:[–—\-−]|till|to)`
)

var (
	tokenRe = regexp.MustCompile(token)
	rangeRe = regexp.MustCompile(`(?i)(` + token + `)\s*` + rangeOp + `\s*(` + token + `)`)
)

// Period is a start/end pair of ISO dates. Either side may be empty.
type Period struct {
	StartISO string `json:"startISO,omitempty"`
	EndISO   string `json:"endISO,omitempty"`
}

// Empty reports whether neither date is set.
func (p Period) Empty() bool {
	return p.StartISO == "" && p.EndISO == ""
}

// Extract yields every valid date in text as YYYY-MM-DD, left to right.
// Tokens that do not form a real calendar date are skipped. Repeated dates
// are yielded as often as they occur.
func Extract(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := text
		for {
			loc := tokenRe.FindStringSubmatchIndex(rest)
			if loc == nil {
				return
			}
			if iso, ok := fromMatch(rest, loc); ok {
				if !yield(iso) {
					return
				}
			}
			rest = rest[loc[1]:]
		}
	}
}

// First returns the first two dates in text as start and end.
func First(text string) Period {
	var p Period
	for iso := range Extract(text) {
		if p.StartISO == "" {
			p.StartISO = iso
			continue
		}
		p.EndISO = iso
		break
	}
	return p
}

// Parse converts a single date token to ISO form.
func Parse(s string) (string, bool) {
	for iso := range Extract(s) {
		return iso, true
	}
	return "", false
}

// fromMatch interprets the first complete group triple of a token match.
func fromMatch(s string, loc []int) (string, bool) {
	for g := 1; g+2 < len(loc)/2; g += 3 {
		if loc[2*g] < 0 {
			continue
		}
		a := s[loc[2*g]:loc[2*g+1]]
		b := s[loc[2*g+2]:loc[2*g+3]]
		c := s[loc[2*g+4]:loc[2*g+5]]
		return resolve(a, b, c)
	}
	return "", false
}

func resolve(a, b, c string) (string, bool) {
	x, _ := strconv.Atoi(a)
	y, _ := strconv.Atoi(b)
	z, _ := strconv.Atoi(c)

	var year, month, day int
	if len(a) == 4 {
		year, month, day = x, y, z
	} else {
		day, month, year = x, y, z
		if len(c) == 2 {
			year = expandYear(z)
		}
	}

	if !Valid(year, month, day) {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func expandYear(yy int) int {
	if yy < 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

// Valid reports whether year, month and day form a real calendar date.
func Valid(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= DaysIn(year, time.Month(month))
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
