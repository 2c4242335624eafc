package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"itinerary_id", "destination", "start_date", "end_date",
	"day", "date", "time", "place_name", "title", "duration", "notes",
	"image", "weather",
}

type exportRow struct {
	ItineraryID string `json:"itinerary_id"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Day         int    `json:"day,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	PlaceName   string `json:"place_name,omitempty"`
	Title       string `json:"title,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Image       string `json:"image,omitempty"`
	Weather     string `json:"weather,omitempty"`
}

// ExportItinerary handles GET /api/v1/itineraries/{id}/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportItinerary(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), owner, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if format != "csv" {
		out := make([]exportRow, len(rows))
		for i, row := range rows {
			out[i] = exportRow(row)
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		day := ""
		if row.Day > 0 {
			day = strconv.Itoa(row.Day)
		}
		_ = cw.Write([]string{
			row.ItineraryID, row.Destination, row.StartDate, row.EndDate,
			day, row.Date, row.Time, row.PlaceName, row.Title, row.Duration, row.Notes,
			row.Image, row.Weather,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="itinerary-%s.csv"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
