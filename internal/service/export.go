package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/repo"
)

// ExportService flattens a saved itinerary into one row per activity.
type ExportService struct {
	repo repo.ItineraryRepo
}

// NewExportService constructs an ExportService backed by r.
func NewExportService(r repo.ItineraryRepo) *ExportService {
	return &ExportService{repo: r}
}

// Export returns the rows for one of owner's itineraries. Days with no
// activities contribute one row with empty activity fields; an itinerary
// saved without a plan yields a single row with only the trip fields.
func (s *ExportService) Export(ctx context.Context, owner, id uuid.UUID) ([]domain.ExportRow, error) {
	it, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	base := domain.ExportRow{
		ItineraryID: it.ID.String(),
		Destination: it.Trip.Destination,
		StartDate:   it.Trip.StartDate.Format(domain.DateLayout),
		EndDate:     it.Trip.EndDate.Format(domain.DateLayout),
	}
	if it.Plan == nil || len(it.Plan.Days) == 0 {
		return []domain.ExportRow{base}, nil
	}

	rows := make([]domain.ExportRow, 0, len(it.Plan.Days))
	for _, d := range it.Plan.Days {
		dayRow := base
		dayRow.Day = d.Day
		dayRow.Date = d.Date
		if len(d.Activities) == 0 {
			dayRow.Weather = dayWeatherSummary(d.Weather)
			rows = append(rows, dayRow)
			continue
		}
		for _, a := range d.Activities {
			row := dayRow
			row.Time = a.Time
			row.PlaceName = a.PlaceName
			row.Title = a.Title
			row.Duration = a.Duration
			row.Notes = a.Notes
			if a.Image != nil {
				row.Image = *a.Image
			}
			row.Weather = activityWeatherSummary(a.Weather)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func activityWeatherSummary(w *domain.ActivityWeather) string {
	if w == nil {
		return ""
	}
	if !w.Available() {
		return w.Note
	}
	return summary(w.Condition, w.TempC)
}

func dayWeatherSummary(w *domain.DayWeather) string {
	if w == nil {
		return ""
	}
	if !w.Available() {
		return w.Note
	}
	return summary(w.Condition, w.AvgTempC)
}

func summary(condition string, temp *float64) string {
	parts := make([]string, 0, 2)
	if condition != "" {
		parts = append(parts, condition)
	}
	if temp != nil {
		parts = append(parts, fmt.Sprintf("%.1f°C", *temp))
	}
	return strings.Join(parts, ", ")
}
