package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// codeFence matches a JSON payload wrapped in a markdown code block.
var codeFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// The wire types mirror OutputSchema. Pointers distinguish a missing
// required field from an empty one.
type wirePlan struct {
	Destination *string   `json:"destination"`
	Days        []wireDay `json:"days"`
	Summary     *string   `json:"summary"`
	Explanation []string  `json:"explanation"`
}

type wireDay struct {
	Day        *int           `json:"day"`
	Date       *string        `json:"date"`
	Activities []wireActivity `json:"activities"`
	Safety     string         `json:"safety"`
}

type wireActivity struct {
	Time      *string `json:"time"`
	PlaceName *string `json:"placeName"`
	Title     *string `json:"title"`
	Duration  *string `json:"duration"`
	Notes     *string `json:"notes"`
}

// Decode parses raw model output into a versioned ItineraryPlan. Output that is
// not JSON, carries unknown fields, or misses a required field is rejected
// here so partially-typed data never reaches enrichment.
func Decode(text string) (*domain.ItineraryPlan, error) {
	text = strings.TrimSpace(text)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if text == "" {
		return nil, errors.New("planner.Decode: empty model output")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	var w wirePlan
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("planner.Decode: invalid JSON from model: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("planner.Decode: trailing data after JSON object")
	}

	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("planner.Decode: %w", err)
	}
	return w.toDomain(), nil
}

func (w wirePlan) validate() error {
	switch {
	case w.Destination == nil || strings.TrimSpace(*w.Destination) == "":
		return errors.New("missing destination")
	case w.Days == nil:
		return errors.New("missing days")
	case w.Summary == nil:
		return errors.New("missing summary")
	case w.Explanation == nil:
		return errors.New("missing explanation")
	}
	for i, d := range w.Days {
		switch {
		case d.Day == nil || *d.Day < 1:
			return fmt.Errorf("days[%d]: missing or invalid day", i)
		case d.Date == nil || strings.TrimSpace(*d.Date) == "":
			return fmt.Errorf("days[%d]: missing date", i)
		case d.Activities == nil:
			return fmt.Errorf("days[%d]: missing activities", i)
		}
		for j, a := range d.Activities {
			if err := a.validate(); err != nil {
				return fmt.Errorf("days[%d].activities[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func (a wireActivity) validate() error {
	for _, f := range []struct {
		name     string
		v        *string
		nonEmpty bool
	}{
		{"time", a.Time, false},
		{"placeName", a.PlaceName, true},
		{"title", a.Title, true},
		{"duration", a.Duration, false},
		{"notes", a.Notes, false},
	} {
		if f.v == nil {
			return fmt.Errorf("missing %s", f.name)
		}
		if f.nonEmpty && strings.TrimSpace(*f.v) == "" {
			return fmt.Errorf("empty %s", f.name)
		}
	}
	return nil
}

func (w wirePlan) toDomain() *domain.ItineraryPlan {
	dest := strings.TrimSpace(*w.Destination)
	plan := &domain.ItineraryPlan{
		SchemaVersion: domain.PlanSchemaVersion,
		Destination:   dest,
		Summary:       *w.Summary,
		Explanation:   w.Explanation,
		Days:          make([]domain.DayPlan, len(w.Days)),
	}
	for i, d := range w.Days {
		day := domain.DayPlan{
			Day:        *d.Day,
			Date:       strings.TrimSpace(*d.Date),
			Safety:     d.Safety,
			Activities: make([]domain.Activity, len(d.Activities)),
		}
		for j, a := range d.Activities {
			day.Activities[j] = domain.Activity{
				Time:      *a.Time,
				PlaceName: BareVenueName(*a.PlaceName, dest),
				Title:     *a.Title,
				Duration:  *a.Duration,
				Notes:     *a.Notes,
			}
		}
		plan.Days[i] = day
	}
	return plan
}

// BareVenueName strips a trailing ", <destination>" the model sometimes
// appends despite the schema description. Only the destination's own name
// (or its first comma-separated part) is removed, so "Museum, Wing B" survives.
func BareVenueName(place, destination string) string {
	place = strings.TrimSpace(place)
	city, _, _ := strings.Cut(destination, ",")
	for _, suffix := range []string{destination, strings.TrimSpace(city)} {
		if suffix == "" {
			continue
		}
		tail := ", " + suffix
		if len(place) > len(tail) && strings.EqualFold(place[len(place)-len(tail):], tail) {
			return strings.TrimSpace(place[:len(place)-len(tail)])
		}
	}
	return place
}
