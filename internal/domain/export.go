package domain

// ExportRow is a single row in the export of a saved itinerary.
// It is a flat, denormalized view: one row per activity, with itinerary and
// day fields repeated. An itinerary saved without a plan yields one row with
// zero values for all day and activity fields.
type ExportRow struct {
	ItineraryID string
	Destination string
	StartDate   string // "2006-01-02"
	EndDate     string // "2006-01-02"

	Day       int
	Date      string
	Time      string
	PlaceName string
	Title     string
	Duration  string
	Notes     string

	// Image is the image URL or empty; Weather is a short human summary
	// ("Sunny, 24.1°C") or the placeholder note.
	Image   string
	Weather string
}
