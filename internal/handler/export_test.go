package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/handler"
)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func(ctx context.Context, owner, id uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, owner, id uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, owner, id)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newExportHTTPHandler wires a Server with the export mock; the saved-itinerary
// routes need a (here unused) SavedItineraryServicer to be mounted.
func newExportHTTPHandler(exportSvc handler.ExportServicer) http.Handler {
	return newHTTPHandler(nil, &mockSavedServicer{}, exportSvc)
}

func exportRowFixture(id uuid.UUID) domain.ExportRow {
	return domain.ExportRow{
		ItineraryID: id.String(),
		Destination: "Paris",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		Day:         1,
		Date:        "2025-06-01",
		Time:        "9:00 AM",
		PlaceName:   "Eiffel Tower",
		Title:       "Climb, then lunch",
		Duration:    "2 hours",
		Notes:       "Book ahead",
		Image:       "https://img.example/eiffel.jpg",
		Weather:     "Sunny, 21.0°C",
	}
}

func okExport(rows ...domain.ExportRow) *mockExportServicer {
	return &mockExportServicer{
		export: func(context.Context, uuid.UUID, uuid.UUID) ([]domain.ExportRow, error) {
			return rows, nil
		},
	}
}

// ---- JSON ------------------------------------------------------------------

func TestExportItinerary_DefaultJSON(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/"+id.String()+"/export", nil)
	rec := httptest.NewRecorder()
	newExportHTTPHandler(okExport(exportRowFixture(id))).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rows []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, id.String(), rows[0]["itinerary_id"])
	assert.Equal(t, "Eiffel Tower", rows[0]["place_name"])
	assert.EqualValues(t, 1, rows[0]["day"])
}

func TestExportItinerary_EmptyJSONArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/"+uuid.NewString()+"/export", nil)
	rec := httptest.NewRecorder()
	newExportHTTPHandler(okExport()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// ---- CSV -------------------------------------------------------------------

func TestExportItinerary_CSV(t *testing.T) {
	id := uuid.New()
	noPlan := domain.ExportRow{ItineraryID: id.String(), Destination: "Paris", StartDate: "2025-06-01", EndDate: "2025-06-03"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/"+id.String()+"/export?format=csv", nil)
	rec := httptest.NewRecorder()
	newExportHTTPHandler(okExport(exportRowFixture(id), noPlan)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), id.String())

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "itinerary_id", records[0][0])
	assert.Equal(t, "1", records[1][4])
	assert.Equal(t, "Climb, then lunch", records[1][8], "commas survive CSV quoting")
	assert.Equal(t, "Sunny, 21.0°C", records[1][12])
	assert.Empty(t, records[2][4], "a row without a day leaves the day column blank")
}

func TestExportItinerary_UnknownFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/"+uuid.NewString()+"/export?format=xml", nil)
	rec := httptest.NewRecorder()
	newExportHTTPHandler(okExport()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportItinerary_NotFound(t *testing.T) {
	svc := &mockExportServicer{
		export: func(context.Context, uuid.UUID, uuid.UUID) ([]domain.ExportRow, error) {
			return nil, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/"+uuid.NewString()+"/export?format=csv", nil)
	rec := httptest.NewRecorder()
	newExportHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
