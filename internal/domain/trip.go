// Package domain contains the core data types for the itinerary API.
// Apart from uuid it has no external dependencies and is imported by every
// other internal package (planner, enrich, repo, service, handler).
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used throughout the API.
const DateLayout = "2006-01-02"

// TripRequest is the validated input of one itinerary generation.
// It is ephemeral: it lives for a single request and is never mutated.
type TripRequest struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Interests   []string

	// Travellers is an opaque JSON description of who is travelling.
	// Empty when not supplied.
	Travellers json.RawMessage

	// Budget is currency-agnostic; nil when not supplied.
	Budget *float64
}

// NumberOfDays returns ceil((end - start) / 24h).
// Only meaningful for a request that passed Validate.
func (r TripRequest) NumberOfDays() int {
	return int(math.Ceil(r.EndDate.Sub(r.StartDate).Hours() / 24))
}

// Validate enforces the request invariants. The returned error wraps
// ErrValidation so callers can test for it with errors.Is.
func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" || r.StartDate.IsZero() || r.EndDate.IsZero() || len(r.Interests) == 0 {
		return fmt.Errorf("%w: destination, start_date, end_date and intrests are required", ErrValidation)
	}
	if !r.EndDate.After(r.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	for _, in := range r.Interests {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("%w: interests must not contain empty entries", ErrValidation)
		}
	}
	if r.Budget != nil && *r.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrValidation)
	}
	if len(r.Travellers) > 0 && !json.Valid(r.Travellers) {
		return fmt.Errorf("%w: travellers must be valid JSON", ErrValidation)
	}
	return nil
}

// SplitInterests turns the comma-separated form of the interests field into a
// trimmed slice, dropping empty entries.
func SplitInterests(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
