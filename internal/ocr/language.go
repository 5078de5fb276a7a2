package ocr

import "strings"

// DefaultLanguage is used when a hint is missing or not supported.
const DefaultLanguage = "eng"

var languages = map[string]bool{
	"eng": true, "swe": true, "dan": true, "nor": true,
	"fin": true, "ger": true, "fre": true, "spa": true,
	"ita": true, "por": true, "pol": true, "dut": true,
}

var aliases = map[string]string{
	"sv": "swe",
	"se": "swe",
	"en": "eng",
}

// NormalizeLanguage turns a loose hint such as "sv", "swe+eng" or "en"
// into one supported three-letter code, falling back to DefaultLanguage.
func NormalizeLanguage(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var primary string
	switch {
	case strings.Contains(s, "swe"), s == "sv", strings.HasPrefix(s, "sv+"):
		primary = "swe"
	default:
		primary, _, _ = strings.Cut(s, "+")
	}

	if v, ok := aliases[primary]; ok {
		primary = v
	}
	if languages[primary] {
		return primary
	}
	return DefaultLanguage
}
