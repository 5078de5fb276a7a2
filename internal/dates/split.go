package dates

import (
	"regexp"
	"strings"
)

var trailingPunct = regexp.MustCompile(`\s*[.,;:–—\-−]+\s*$`)

// Split is a clinic line with its service period removed.
type Split struct {
	Clean string `json:"clean"`
	Period
}

// SplitLine separates the place name in line from the period printed with
// it. An explicit "date <range> date" pair takes priority. Without one, the
// first two dates anywhere in the line are used and every date token and
// standalone range marker is removed.
func SplitLine(line string) Split {
	if m := rangeRe.FindStringSubmatchIndex(line); m != nil {
		start, _ := Parse(line[m[2]:m[3]])
		end, _ := Parse(line[m[16]:m[17]])
		return Split{
			Clean:  tidy(line[:m[0]] + " " + line[m[1]:]),
			Period: Period{StartISO: start, EndISO: end},
		}
	}

	p := First(line)
	stripped := tokenRe.ReplaceAllString(line, " ")

	words := strings.Fields(stripped)
	kept := words[:0]
	for _, w := range words {
		if isRangeMarker(w) {
			continue
		}
		kept = append(kept, w)
	}

	return Split{
		Clean:  tidy(strings.Join(kept, " ")),
		Period: p,
	}
}

func isRangeMarker(w string) bool {
	if strings.EqualFold(w, "till") || strings.EqualFold(w, "to") {
		return true
	}
	return strings.Trim(w, "–—-−") == ""
}

func tidy(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(trailingPunct.ReplaceAllString(s, ""))
}
