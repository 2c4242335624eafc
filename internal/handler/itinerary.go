package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/middleware"
)

// itineraryRequest is the body of POST /api/v1/itineraries.
type itineraryRequest struct {
	Destination string                `json:"destination"`
	StartDate   openapi_types.Date    `json:"start_date"`
	EndDate     openapi_types.Date    `json:"end_date"`
	Interests   json.RawMessage       `json:"interests"`
	Intrests    json.RawMessage       `json:"intrests"`
	Travellers  json.RawMessage       `json:"travellers"`
	Budget      json.RawMessage       `json:"budget"`
	Plan        *domain.ItineraryPlan `json:"plan"`
}

type itineraryResponse struct {
	ID          uuid.UUID             `json:"id"`
	Destination string                `json:"destination"`
	StartDate   openapi_types.Date    `json:"start_date"`
	EndDate     openapi_types.Date    `json:"end_date"`
	Interests   []string              `json:"interests"`
	Travellers  json.RawMessage       `json:"travellers,omitempty"`
	Budget      *float64              `json:"budget,omitempty"`
	Plan        *domain.ItineraryPlan `json:"plan"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type itineraryListResponse struct {
	Data       []itineraryResponse `json:"data"`
	Pagination pagination          `json:"pagination"`
}

// CreateItinerary handles POST /api/v1/itineraries.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	it, err := decodeItinerary(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.saved.Save(r.Context(), owner, it)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itineraryToResponse(saved))
}

// ListItineraries handles GET /api/v1/itineraries.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	params := domain.NewPaginationParams(queryInt(q.Get("page")), queryInt(q.Get("limit")))
	items, total, err := s.saved.ListPaged(r.Context(), owner, params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	data := make([]itineraryResponse, len(items))
	for i, it := range items {
		data[i] = itineraryToResponse(it)
	}
	writeJSON(w, http.StatusOK, itineraryListResponse{
		Data: data,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetItinerary handles GET /api/v1/itineraries/{id}.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	it, err := s.saved.Get(r.Context(), owner, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itineraryToResponse(it))
}

// DeleteItinerary handles DELETE /api/v1/itineraries/{id}.
func (s *Server) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := ownerAndID(w, r)
	if !ok {
		return
	}

	if err := s.saved.Delete(r.Context(), owner, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ----------------------------------------------------------------

// ownerAndID reads the caller and the {id} path parameter, writing the error
// response itself when either is missing or malformed.
func ownerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

func decodeItinerary(r *http.Request) (domain.SavedItinerary, error) {
	var body itineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.SavedItinerary{}, errors.New("invalid JSON body: dates must be YYYY-MM-DD")
	}

	raw := body.Interests
	if isNull(raw) {
		raw = body.Intrests
	}
	interests, err := interestsFromJSON(raw)
	if err != nil {
		return domain.SavedItinerary{}, err
	}
	budget, err := budgetFromJSON(body.Budget)
	if err != nil {
		return domain.SavedItinerary{}, err
	}

	it := domain.SavedItinerary{
		Trip: domain.TripRequest{
			Destination: body.Destination,
			StartDate:   body.StartDate.Time,
			EndDate:     body.EndDate.Time,
			Interests:   interests,
			Budget:      budget,
		},
		Plan: body.Plan,
	}
	if !isNull(body.Travellers) {
		it.Trip.Travellers = body.Travellers
	}
	return it, nil
}

func itineraryToResponse(it domain.SavedItinerary) itineraryResponse {
	interests := it.Trip.Interests
	if interests == nil {
		interests = []string{}
	}
	return itineraryResponse{
		ID:          it.ID,
		Destination: it.Trip.Destination,
		StartDate:   openapi_types.Date{Time: it.Trip.StartDate},
		EndDate:     openapi_types.Date{Time: it.Trip.EndDate},
		Interests:   interests,
		Travellers:  it.Trip.Travellers,
		Budget:      it.Trip.Budget,
		Plan:        it.Plan,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// queryInt returns nil for a missing or non-numeric query value.
func queryInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
