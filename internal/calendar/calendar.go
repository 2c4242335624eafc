// Package calendar parses the loosely formatted dates that arrive from
// browsers and from model output, and normalizes them to "2006-01-02".
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

var ymdPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse reads a date or date-time string. Plain "2006-01-02" values are
// parsed strictly; anything else goes through dateparse in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("calendar.Parse: empty date")
	}
	if ymdPattern.MatchString(s) {
		t, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("calendar.Parse: %w", err)
		}
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar.Parse: %w", err)
	}
	return t.UTC(), nil
}

// Normalize returns s as a "2006-01-02" string, or false if s is not a date.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if ymdPattern.MatchString(s) {
		if _, err := time.Parse(domain.DateLayout, s); err != nil {
			return "", false
		}
		return s, true
	}
	t, err := Parse(s)
	if err != nil {
		return "", false
	}
	return t.Format(domain.DateLayout), true
}
