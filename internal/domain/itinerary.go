package domain

// PlanSchemaVersion is stamped on every plan decoded from model output.
// Bump it whenever the generation schema changes shape.
const PlanSchemaVersion = 1

// Placeholder notes attached in place of failed lookups.
const (
	ActivityWeatherUnavailable = "Weather unavailable for activity time"
	DayWeatherUnavailable      = "Weather unavailable for this date"
	ImageUnavailable           = "Image unavailable"
)

// ItineraryPlan is the day-by-day plan produced by the generation step.
// After generation it is only mutated by enrichment, which attaches
// image and weather fields but never adds or removes days or activities.
type ItineraryPlan struct {
	SchemaVersion int       `json:"schemaVersion"`
	Destination   string    `json:"destination"`
	Days          []DayPlan `json:"days"`
	Summary       string    `json:"summary"`
	Explanation   []string  `json:"explanation"`
}

// DayPlan is one day of an itinerary. PlaceQueried and Weather are set by
// enrichment.
type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	Safety     string     `json:"safety,omitempty"`

	PlaceQueried string      `json:"placeQueried,omitempty"`
	Weather      *DayWeather `json:"weather,omitempty"`
}

// Activity is a single planned visit. PlaceName is the bare venue name and is
// the key for image and weather lookups.
type Activity struct {
	Time      string `json:"time"`
	PlaceName string `json:"placeName"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes"`

	// Image is null when no image could be found; ImageNote then explains why.
	Image     *string          `json:"image"`
	ImageNote string           `json:"imageNote,omitempty"`
	Weather   *ActivityWeather `json:"weather"`
}

// DayWeather is the day-level forecast. A value with a non-empty Note is the
// "unavailable" placeholder.
type DayWeather struct {
	Date      string        `json:"date,omitempty"`
	Condition string        `json:"condition,omitempty"`
	MaxTempC  *float64      `json:"maxTempC,omitempty"`
	MinTempC  *float64      `json:"minTempC,omitempty"`
	AvgTempC  *float64      `json:"avgTempC,omitempty"`
	Icon      string        `json:"icon,omitempty"`
	Midday    *HourlySample `json:"midday,omitempty"`
	Note      string        `json:"note,omitempty"`
}

// Available reports whether w carries real forecast data.
func (w *DayWeather) Available() bool {
	return w != nil && w.Note == ""
}

// HourlySample is one entry of a day's hourly forecast series.
type HourlySample struct {
	Time      string   `json:"time"`
	TempC     *float64 `json:"tempC,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Icon      string   `json:"icon,omitempty"`
}

// ActivityWeather is the forecast sample closest to the activity's time.
// A value with a non-empty Note is the "unavailable" placeholder.
type ActivityWeather struct {
	Date      string   `json:"date,omitempty"`
	Time      string   `json:"time,omitempty"`
	TempC     *float64 `json:"tempC,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// Available reports whether w carries real forecast data.
func (w *ActivityWeather) Available() bool {
	return w != nil && w.Note == ""
}

// UnavailableActivityWeather returns the placeholder for a failed activity lookup.
func UnavailableActivityWeather() *ActivityWeather {
	return &ActivityWeather{Note: ActivityWeatherUnavailable}
}

// UnavailableDayWeather returns the placeholder for a failed day lookup.
func UnavailableDayWeather() *DayWeather {
	return &DayWeather{Note: DayWeatherUnavailable}
}
