package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// durationPattern accepts "1h 30m", "2h", "45m", "1 h 5 m" and nothing else.
// Input is folded by asciiFold first.
var durationPattern = regexp.MustCompile(`^(?:([0-9]+) *[hH] *)?(?:([0-9]+) *[mM])?$`)

// MatchDuration reports whether fragment is a duration token and its value in minutes.
// At least one of the hour or minute components must be present. Any Unicode
// decimal digit and any Unicode space are accepted, so "1h 30m" and "٤٥m" match.
func MatchDuration(fragment string) (int, bool) {
	m := durationPattern.FindStringSubmatch(asciiFold(strings.TrimSpace(fragment)))
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, false
	}
	hours, ok := atoi(m[1])
	if !ok {
		return 0, false
	}
	minutes, ok := atoi(m[2])
	if !ok {
		return 0, false
	}
	if hours > maxHours {
		return 0, false
	}
	return hours*60 + minutes, true
}

// maxHours keeps hours*60 + minutes inside int on every platform.
const maxHours = 1 << 24

func atoi(digits string) (int, bool) {
	if digits == "" {
		return 0, true
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > 1<<30 {
		return 0, false
	}
	return n, true
}

// asciiFold maps every space to ' ' and every decimal digit to its ASCII form.
func asciiFold(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case r <= unicode.MaxASCII:
			return r
		case unicode.Is(unicode.Nd, r):
			if d, ok := digitValue(r); ok {
				return '0' + d
			}
		}
		return r
	}, s)
}

// digitValue relies on every Nd range starting at a zero and running in
// consecutive blocks of ten.
func digitValue(r rune) (rune, bool) {
	for _, rg := range unicode.Nd.R16 {
		lo, hi := rune(rg.Lo), rune(rg.Hi)
		if r >= lo && r <= hi && (r-lo)%rune(rg.Stride) == 0 {
			return ((r - lo) / rune(rg.Stride)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		lo, hi := rune(rg.Lo), rune(rg.Hi)
		if r >= lo && r <= hi && (r-lo)%rune(rg.Stride) == 0 {
			return ((r - lo) / rune(rg.Stride)) % 10, true
		}
	}
	return 0, false
}
