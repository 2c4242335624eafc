package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// errorResponse is the body of every failed request: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error onto a status code and body.
// Unknown errors are logged and reported as a bare 500 so internals never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, msg)
}

// classify returns the HTTP status and client-facing message for err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, unwrapMessage(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "itinerary not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway, unwrapMessage(err, domain.ErrGeneration)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// unwrapMessage extracts the human-readable part following a sentinel.
// e.g. "service.ItineraryService.Generate: validation error: end_date must be after start_date"
// becomes "end_date must be after start_date".
func unwrapMessage(err error, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 && i+len(prefix) < len(msg) {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}
