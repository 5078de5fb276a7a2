// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration and log output.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type unit struct {
	name string
	size int64
}

// Binary multiples, largest first. Both "MB" and "MiB" spellings mean 1024^2.
var byteUnits = []unit{
	{"EB", 1 << 60},
	{"PB", 1 << 50},
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one, e.g. 1536 with precision 1 is "1.5 KB".
func FormatBytes(n int64, precision int) string {
	if precision < 0 {
		precision = 0
	}

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	for _, u := range byteUnits {
		if n >= u.size && u.size > 1 {
			v := float64(n) / float64(u.size)
			return sign + strconv.FormatFloat(v, 'f', precision, 64) + " " + u.name
		}
	}
	return sign + strconv.FormatInt(n, 10) + " B"
}

// ParseBytes reads sizes such as "10MB", "512 kb", "1.5GiB" or a bare byte
// count. Units are case-insensitive and binary.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})

	number, suffix := s, ""
	if split >= 0 {
		number, suffix = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	if suffix == "" {
		return int64(value), nil
	}

	name := strings.ToUpper(strings.Replace(suffix, "i", "", 1))
	if name != "B" && !strings.HasSuffix(name, "B") {
		name += "B"
	}

	for _, u := range byteUnits {
		if u.name == name {
			return int64(value * float64(u.size)), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", suffix)
}
