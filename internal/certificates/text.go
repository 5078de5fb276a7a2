package certificates

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	codeRe      = regexp.MustCompile(`(?i)\b(ST?[abc][0-9]{1,2})\b`)
	code2021Re  = regexp.MustCompile(`(?i)^ST?([abc])(\d+)$`)
	pnrRe       = regexp.MustCompile(`\b(\d{6}|\d{8})[- ]?\d{4}\b`)
	specialtyRe = regexp.MustCompile(`(?i)specialitet\s+som\s+ansökan\s+avser\s*:?\s*([^\n]+)`)
	nameLineRe  = regexp.MustCompile(`\n(\p{Lu}\p{Ll}+)[ \t]+(\p{Lu}\p{Ll}+)(?:[ \t]|\r?$|\n)`)
	firstTypo   = regexp.MustCompile(`(?i)\bfömamn\b`)
	lastTypo    = regexp.MustCompile(`(?i)\beftemamn\b`)
	stopLabels  = regexp.MustCompile(`(?i)(Ort och datum|Namnteckning|Namnförtydligande|Specialitet|Tjänsteställe|Bilaga nr)`)
	checkedRe   = regexp.MustCompile(`(?i)(^|\s)[x☒✓✔]\s*kursledare`)
)

// 2021 milestone ranges: STa1-7, STb1-4, STc1-14.
var limits2021 = map[byte]int{'a': 7, 'b': 4, 'c': 14}

// Codes returns the milestone codes in text, upper-cased and without
// duplicates, in order of appearance.
func Codes(text string) []string {
	var out []string
	for _, m := range codeRe.FindAllStringSubmatch(text, -1) {
		c := strings.ToUpper(m[1])
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeCodes2021 rewrites codes to the STa1 form, drops codes outside
// the 2021 ranges and sorts by letter, then number.
func NormalizeCodes2021(codes []string) []string {
	type code struct {
		letter byte
		n      int
	}

	var valid []code
	for _, raw := range codes {
		m := code2021Re.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		c := code{letter: strings.ToLower(m[1])[0]}
		c.n, _ = strconv.Atoi(m[2])
		if c.n < 1 || c.n > limits2021[c.letter] || slices.Contains(valid, c) {
			continue
		}
		valid = append(valid, c)
	}

	slices.SortFunc(valid, func(a, b code) int {
		if a.letter != b.letter {
			return int(a.letter) - int(b.letter)
		}
		return a.n - b.n
	})

	out := make([]string, len(valid))
	for i, c := range valid {
		out[i] = "ST" + string(c.letter) + strconv.Itoa(c.n)
	}
	return out
}

// PersonalNumber returns the first Swedish personal identity number in text
// with whitespace removed.
func PersonalNumber(text string) string {
	m := pnrRe.FindString(strings.Join(strings.Fields(text), " "))
	return strings.ReplaceAll(m, " ", "")
}

// Name reads the applicant name. The form prints a "Efternamn Förnamn"
// label row followed by the values, last name first.
func Name(text string) (first, last string) {
	text = firstTypo.ReplaceAllString(text, "Förnamn")
	text = lastTypo.ReplaceAllString(text, "Efternamn")

	lines := nonEmptyLines(text)
	for i, l := range lines {
		lower := strings.ToLower(l)
		if !strings.Contains(lower, "efternamn") || !strings.Contains(lower, "förnamn") {
			continue
		}
		if i+1 < len(lines) {
			parts := strings.Fields(lines[i+1])
			if len(parts) >= 2 {
				return strings.Join(parts[1:], " "), parts[0]
			}
		}
		break
	}

	if m := nameLineRe.FindStringSubmatch(text); m != nil {
		return m[2], m[1]
	}
	return "", ""
}

// Specialty returns the value of the "Specialitet som ansökan avser" field.
func Specialty(text string) string {
	if m := specialtyRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// SubjectAfter returns the one or two lines following the label.
func SubjectAfter(text string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	lines := strings.Split(text[loc[0]:], "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:min(3, len(lines))]
	return squeeze(strings.Join(lines, " "))
}

// BlockAfter returns the free-text block following the label, up to a blank
// line or the next known form label.
func BlockAfter(text string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	lines := strings.Split(text[loc[0]:], "\n")[1:]

	var buf []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" || stopLabels.MatchString(l) {
			break
		}
		buf = append(buf, strings.TrimRight(l, "\r"))
	}
	return squeeze(strings.Join(buf, "\n"))
}

// LineMatching returns the first line that matches re.
func LineMatching(text string, re *regexp.Regexp) string {
	for l := range strings.Lines(text) {
		if re.MatchString(l) {
			return strings.TrimSpace(l)
		}
	}
	return ""
}

// ValueAfter returns the value printed for a label: text after a colon on
// the label line, or else the next non-empty line.
func ValueAfter(text string, label *regexp.Regexp) string {
	lines := nonEmptyLines(text)
	for i, l := range lines {
		loc := label.FindStringIndex(l)
		if loc == nil {
			continue
		}
		if _, after, ok := strings.Cut(l[loc[1]:], ":"); ok && strings.TrimSpace(after) != "" {
			return strings.TrimSpace(after)
		}
		if i+1 < len(lines) && !stopLabels.MatchString(lines[i+1]) {
			return lines[i+1]
		}
		return ""
	}
	return ""
}

func nonEmptyLines(text string) []string {
	var out []string
	for l := range strings.Lines(text) {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// squeeze collapses horizontal whitespace runs and trims the result while
// keeping line breaks.
func squeeze(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
