package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tripsmith/itinerary-api/internal/calendar"
	"github.com/tripsmith/itinerary-api/internal/domain"
)

// multipartMemory is the in-memory cap for multipart form parsing. Request
// bodies are already bounded by the max body size middleware.
const multipartMemory = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// generateResponse is the terminal success body: {"done": true, "data": plan}.
type generateResponse struct {
	Done bool                  `json:"done"`
	Data *domain.ItineraryPlan `json:"data"`
}

type chunkEvent struct {
	Chunk string `json:"chunk"`
}

// generateBody is the JSON form of the inbound request. intrests keeps the
// client's spelling; interests is accepted as an alias.
type generateBody struct {
	Destination string          `json:"destination"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Intrests    json.RawMessage `json:"intrests"`
	Interests   json.RawMessage `json:"interests"`
	Travellers  json.RawMessage `json:"travellers"`
	Budget      json.RawMessage `json:"budget"`
}

// GenerateResponse handles POST /api/v1/ai/generate-response.
//
// The default response is a single {"done":true,"data":...} body. Clients
// that send "Accept: text/event-stream" or ?stream=true receive the raw model
// output as {"chunk":...} server-sent events followed by the same terminal
// object (or {"error":...}) as the last event.
func (s *Server) GenerateResponse(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTripRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if wantsStream(r) {
		s.generateStream(w, r, req)
		return
	}

	plan, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Done: true, Data: plan})
}

// generateStream opens the event stream lazily: a failure before the first
// chunk is still reported with a proper status code.
func (s *Server) generateStream(w http.ResponseWriter, r *http.Request, req domain.TripRequest) {
	rc := http.NewResponseController(w)
	started := false
	send := func(v any) error {
		if !started {
			_ = rc.SetWriteDeadline(time.Time{})
			h := w.Header()
			h.Set("Content-Type", "text/event-stream")
			h.Set("Cache-Control", "no-cache")
			h.Set("Connection", "keep-alive")
			h.Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		return rc.Flush()
	}

	plan, err := s.generator.GenerateStream(r.Context(), req, func(chunk string) error {
		return send(chunkEvent{Chunk: chunk})
	})
	if err != nil {
		if !started {
			s.writeServiceError(w, r, err)
			return
		}
		_, msg := classify(err)
		s.logger.WarnContext(r.Context(), "stream ended with error", "error", err)
		_ = send(errorResponse{Error: msg})
		return
	}
	if err := send(generateResponse{Done: true, Data: plan}); err != nil {
		s.logger.WarnContext(r.Context(), "client went away before the final event", "error", err)
	}
}

func wantsStream(r *http.Request) bool {
	if v := r.URL.Query().Get("stream"); v != "" {
		on, _ := strconv.ParseBool(v)
		return on
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// decodeTripRequest reads a JSON, urlencoded or multipart body into a
// TripRequest. It reports malformed fields; missing fields are left for
// TripRequest.Validate.
func decodeTripRequest(r *http.Request) (domain.TripRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return decodeForm(r)
	default:
		return decodeJSON(r)
	}
}

func decodeJSON(r *http.Request) (domain.TripRequest, error) {
	var body generateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.TripRequest{}, errBodyTooLarge
		}
		return domain.TripRequest{}, errors.New("invalid JSON body")
	}

	req := domain.TripRequest{Destination: strings.TrimSpace(body.Destination)}
	var err error
	if req.StartDate, err = optionalDate("start_date", body.StartDate); err != nil {
		return domain.TripRequest{}, err
	}
	if req.EndDate, err = optionalDate("end_date", body.EndDate); err != nil {
		return domain.TripRequest{}, err
	}

	raw := body.Intrests
	if isNull(raw) {
		raw = body.Interests
	}
	if req.Interests, err = interestsFromJSON(raw); err != nil {
		return domain.TripRequest{}, err
	}
	if !isNull(body.Travellers) {
		req.Travellers = body.Travellers
	}
	if req.Budget, err = budgetFromJSON(body.Budget); err != nil {
		return domain.TripRequest{}, err
	}
	return req, nil
}

func decodeForm(r *http.Request) (domain.TripRequest, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.TripRequest{}, errBodyTooLarge
		}
		return domain.TripRequest{}, errors.New("invalid form body")
	}

	req := domain.TripRequest{Destination: strings.TrimSpace(r.PostFormValue("destination"))}
	if req.StartDate, err = optionalDate("start_date", r.PostFormValue("start_date")); err != nil {
		return domain.TripRequest{}, err
	}
	if req.EndDate, err = optionalDate("end_date", r.PostFormValue("end_date")); err != nil {
		return domain.TripRequest{}, err
	}

	values := r.PostForm["intrests"]
	if len(values) == 0 {
		values = r.PostForm["interests"]
	}
	for _, v := range values {
		req.Interests = append(req.Interests, domain.SplitInterests(v)...)
	}

	if t := strings.TrimSpace(r.PostFormValue("travellers")); t != "" {
		req.Travellers = travellersFromText(t)
	}
	if req.Budget, err = parseBudget(r.PostFormValue("budget")); err != nil {
		return domain.TripRequest{}, err
	}
	return req, nil
}

// optionalDate parses s when present; an empty value yields the zero time.
func optionalDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := calendar.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date (YYYY-MM-DD)", field)
	}
	return t, nil
}

// interestsFromJSON accepts a comma-separated string or an array of strings.
func interestsFromJSON(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.SplitInterests(s), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.New("intrests must be a string or an array of strings")
	}
	var out []string
	for _, v := range list {
		out = append(out, domain.SplitInterests(v)...)
	}
	return out, nil
}

// budgetFromJSON accepts a number or a numeric string.
func budgetFromJSON(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseBudget(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.New("budget must be a number")
	}
	return &f, nil
}

func parseBudget(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil, errors.New("budget must be a number")
	}
	return &f, nil
}

// travellersFromText keeps JSON objects and arrays as they are and stores any
// other text as a JSON string.
func travellersFromText(t string) json.RawMessage {
	if (strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")) && json.Valid([]byte(t)) {
		return json.RawMessage(t)
	}
	b, _ := json.Marshal(t)
	return b
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
