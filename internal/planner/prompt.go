// Package planner turns a trip request into a day-by-day ItineraryPlan using a
// generative model constrained by a strict JSON output schema.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// BuildPrompt renders the generation prompt for a validated request.
// The day count embedded here is what the model is asked to honour.
func BuildPrompt(req domain.TripRequest) string {
	interests := "general sightseeing and local culture"
	if len(req.Interests) > 0 {
		interests = strings.Join(req.Interests, ", ")
	}

	travellers := "not specified"
	if len(req.Travellers) > 0 && string(req.Travellers) != "null" {
		travellers = string(req.Travellers)
	}

	budget := "No strict budget provided"
	if req.Budget != nil {
		budget = "Budget: " + strconv.FormatFloat(*req.Budget, 'f', -1, 64)
	}

	var b strings.Builder
	b.WriteString("You are a travel planner. Create a day-by-day itinerary for a trip with the following details:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "- Start date: %s\n", req.StartDate.Format(domain.DateLayout))
	fmt.Fprintf(&b, "- End date: %s\n", req.EndDate.Format(domain.DateLayout))
	fmt.Fprintf(&b, "- Number of days: %d\n", req.NumberOfDays())
	fmt.Fprintf(&b, "- Interests: %s\n", interests)
	fmt.Fprintf(&b, "- Travellers: %s\n", travellers)
	fmt.Fprintf(&b, "- %s\n\n", budget)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Produce exactly %d days, numbered from 1, each with its calendar date in YYYY-MM-DD format.\n", req.NumberOfDays())
	b.WriteString("- For every activity, \"placeName\" must be the exact, searchable name of a real venue or attraction " +
		"(for example \"Eiffel Tower\", \"Louvre Museum\", \"Central Park\").\n")
	b.WriteString("- \"placeName\" contains only the bare venue name: never append the city, region or country " +
		"(write \"Eiffel Tower\", not \"Eiffel Tower, Paris\").\n")
	b.WriteString("- Use specific places, not generic descriptions such as \"a local restaurant\".\n")
	b.WriteString("- \"explanation\" lists why the chosen places and activities fit the interests.\n\n")
	b.WriteString("Return only valid JSON that follows the response schema exactly. No markdown, no commentary.")
	return b.String()
}
