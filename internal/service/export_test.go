package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/service"
)

func repoReturning(it domain.SavedItinerary) *mockItineraryRepo {
	return &mockItineraryRepo{
		getByID: func(context.Context, uuid.UUID, uuid.UUID) (domain.SavedItinerary, error) {
			return it, nil
		},
	}
}

func temp(f float64) *float64 { return &f }

func TestExportService_Export_OneRowPerActivity(t *testing.T) {
	img := "https://img.example/louvre.jpg"
	plan := &domain.ItineraryPlan{
		Destination: "Paris",
		Days: []domain.DayPlan{
			{Day: 1, Date: "2025-06-01", Activities: []domain.Activity{
				{Time: "9:00 AM", PlaceName: "Louvre Museum", Title: "Art", Image: &img,
					Weather: &domain.ActivityWeather{Condition: "Sunny", TempC: temp(21.46)}},
				{Time: "Evening", PlaceName: "Seine", Title: "Cruise",
					ImageNote: domain.ImageUnavailable, Weather: domain.UnavailableActivityWeather()},
			}},
			{Day: 2, Date: "2025-06-02", Weather: &domain.DayWeather{Condition: "Rain", AvgTempC: temp(15)}},
		},
	}
	it := domain.SavedItinerary{ID: uuid.New(), Trip: validRequest(), Plan: plan}
	svc := service.NewExportService(repoReturning(it))

	rows, err := svc.Export(context.Background(), uuid.New(), it.ID)

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, it.ID.String(), rows[0].ItineraryID)
	assert.Equal(t, "Paris", rows[0].Destination)
	assert.Equal(t, "2025-06-01", rows[0].StartDate)
	assert.Equal(t, "2025-06-03", rows[0].EndDate)
	assert.Equal(t, 1, rows[0].Day)
	assert.Equal(t, "Louvre Museum", rows[0].PlaceName)
	assert.Equal(t, img, rows[0].Image)
	assert.Equal(t, "Sunny, 21.5°C", rows[0].Weather)

	assert.Empty(t, rows[1].Image)
	assert.Equal(t, domain.ActivityWeatherUnavailable, rows[1].Weather)

	assert.Equal(t, 2, rows[2].Day, "a day with no activities still produces one row")
	assert.Empty(t, rows[2].PlaceName)
	assert.Equal(t, "Rain, 15.0°C", rows[2].Weather)
}

func TestExportService_Export_NoPlan(t *testing.T) {
	it := domain.SavedItinerary{ID: uuid.New(), Trip: validRequest()}
	svc := service.NewExportService(repoReturning(it))

	rows, err := svc.Export(context.Background(), uuid.New(), it.ID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Paris", rows[0].Destination)
	assert.Zero(t, rows[0].Day)
}

func TestExportService_Export_NotFound(t *testing.T) {
	svc := service.NewExportService(&mockItineraryRepo{
		getByID: func(context.Context, uuid.UUID, uuid.UUID) (domain.SavedItinerary, error) {
			return domain.SavedItinerary{}, domain.ErrNotFound
		},
	})

	_, err := svc.Export(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
