package enrich

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultHour is used when no rule matches a time label.
const DefaultHour = 12

// hourRule maps a lower-cased time label to an hour, or reports no match.
type hourRule struct {
	name  string
	match func(label string) (int, bool)
}

var (
	clockPattern    = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\s*(am|pm|a\.m\.|p\.m\.)?`)
	meridiemPattern = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)`)
)

// hourRules is evaluated in order; the first match wins. Keyword rules are
// ordered so that a longer phrase is tried before any keyword it contains
// ("midnight" before "night", "late afternoon" before "afternoon",
// "afternoon" before "noon").
var hourRules = []hourRule{
	{"HH:MM or HH.MM", matchClock},
	{"H am/pm", matchMeridiem},
	{"midnight", keyword(0, "midnight")},
	{"late afternoon", keyword(16, "late afternoon")},
	{"afternoon", keyword(15, "afternoon")},
	{"noon", keyword(12, "noon", "midday")},
	{"morning", keyword(9, "morning")},
	{"evening", keyword(18, "evening")},
	{"night", keyword(21, "night")},
}

// ResolveHour translates a free-text activity time ("9:00 AM", "Morning",
// "late afternoon") into an hour 0-23. Unrecognized labels yield DefaultHour.
func ResolveHour(label string) int {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return DefaultHour
	}
	for _, r := range hourRules {
		if h, ok := r.match(s); ok {
			return h
		}
	}
	return DefaultHour
}

func matchClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return 0, false
	}
	return applyMeridiem(hh, m[3]), true
}

func matchMeridiem(s string) (int, bool) {
	m := meridiemPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	if hh < 1 || hh > 12 {
		return 0, false
	}
	return applyMeridiem(hh, m[2]), true
}

// applyMeridiem converts a 12-hour clock value; hours already past 12 are
// taken as 24-hour values whatever the suffix says.
func applyMeridiem(hh int, suffix string) int {
	pm := strings.HasPrefix(suffix, "p")
	am := strings.HasPrefix(suffix, "a")
	switch {
	case pm && hh < 12:
		hh += 12
	case am && hh == 12:
		hh = 0
	}
	return hh % 24
}

func keyword(hour int, words ...string) func(string) (int, bool) {
	return func(s string) (int, bool) {
		for _, w := range words {
			if strings.Contains(s, w) {
				return hour, true
			}
		}
		return 0, false
	}
}
