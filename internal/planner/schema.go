package planner

import "google.golang.org/genai"

// OutputSchema is the structured-output contract sent with every generation
// request. Decode enforces the same required fields on the way back in.
func OutputSchema() *genai.Schema {
	activity := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"time": {
				Type:        genai.TypeString,
				Description: "Time of day, e.g. \"9:00 AM\" or \"Morning\"",
			},
			"placeName": {
				Type: genai.TypeString,
				Description: "Exact name of the place to visit with no extra information; " +
					"for the Eiffel Tower write \"Eiffel Tower\", not \"Eiffel Tower, Paris\"",
			},
			"title": {
				Type:        genai.TypeString,
				Description: "Short activity description",
			},
			"duration": {
				Type:        genai.TypeString,
				Description: "Estimated time to spend, e.g. \"2 hours\"",
			},
			"notes": {
				Type:        genai.TypeString,
				Description: "Tips, entry fees or recommendations",
			},
		},
		Required:         []string{"time", "placeName", "title", "duration", "notes"},
		PropertyOrdering: []string{"time", "placeName", "title", "duration", "notes"},
	}

	day := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"day":        {Type: genai.TypeInteger},
			"date":       {Type: genai.TypeString, Description: "Calendar date, YYYY-MM-DD"},
			"activities": {Type: genai.TypeArray, Items: activity},
			"safety": {
				Type:        genai.TypeString,
				Description: "Safety tips or considerations for this day",
			},
		},
		Required:         []string{"day", "date", "activities"},
		PropertyOrdering: []string{"day", "date", "activities", "safety"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"destination": {Type: genai.TypeString, Description: "The destination city or country"},
			"days":        {Type: genai.TypeArray, Items: day},
			"summary":     {Type: genai.TypeString, Description: "Brief overview of the entire trip"},
			"explanation": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Reasons why specific places and activities were chosen",
			},
		},
		Required:         []string{"destination", "days", "summary", "explanation"},
		PropertyOrdering: []string{"destination", "days", "summary", "explanation"},
	}
}
