package planner_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/planner"
)

const validOutput = `{
  "destination": "Paris",
  "days": [
    {"day": 1, "date": "2025-06-01", "safety": "Watch for pickpockets",
     "activities": [
       {"time": "9:00 AM", "placeName": "Eiffel Tower", "title": "Summit visit", "duration": "2 hours", "notes": "Book ahead"},
       {"time": "Afternoon", "placeName": "Louvre Museum, Paris", "title": "Art", "duration": "3 hours", "notes": ""}
     ]},
    {"day": 2, "date": "2025-06-02", "activities": []}
  ],
  "summary": "Two days in Paris",
  "explanation": ["Iconic landmarks", "Museums match interests"]
}`

// fakeGenerator is a hand-written test double for planner.Generator.
type fakeGenerator struct {
	text    string
	chunks  []string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeGenerator) Stream(_ context.Context, prompt string, onChunk func(string) error) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	var full strings.Builder
	for _, c := range f.chunks {
		full.WriteString(c)
		if err := onChunk(c); err != nil {
			return "", err
		}
	}
	return full.String(), nil
}

var _ planner.Generator = (*fakeGenerator)(nil)

type recordingObserver struct{ outcomes []string }

func (r *recordingObserver) ObserveGeneration(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func parisRequest() domain.TripRequest {
	budget := 2500.0
	return domain.TripRequest{
		Destination: "Paris",
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Interests:   []string{"art", "food"},
		Travellers:  json.RawMessage(`{"adults":2,"children":1}`),
		Budget:      &budget,
	}
}

// ---- prompt ----------------------------------------------------------------

func TestBuildPrompt(t *testing.T) {
	p := planner.BuildPrompt(parisRequest())

	assert.Contains(t, p, "- Destination: Paris")
	assert.Contains(t, p, "- Start date: 2025-06-01")
	assert.Contains(t, p, "- End date: 2025-06-03")
	assert.Contains(t, p, "- Number of days: 2")
	assert.Contains(t, p, "Produce exactly 2 days")
	assert.Contains(t, p, "- Interests: art, food")
	assert.Contains(t, p, `- Travellers: {"adults":2,"children":1}`)
	assert.Contains(t, p, "Budget: 2500")
	assert.Contains(t, p, "bare venue name")
}

func TestBuildPrompt_OptionalFieldsAbsent(t *testing.T) {
	req := parisRequest()
	req.Budget = nil
	req.Travellers = nil

	p := planner.BuildPrompt(req)

	assert.Contains(t, p, "No strict budget provided")
	assert.Contains(t, p, "- Travellers: not specified")
}

// ---- decode ----------------------------------------------------------------

func TestDecode_Valid(t *testing.T) {
	plan, err := planner.Decode(validOutput)

	require.NoError(t, err)
	assert.Equal(t, domain.PlanSchemaVersion, plan.SchemaVersion)
	assert.Equal(t, "Paris", plan.Destination)
	require.Len(t, plan.Days, 2)
	require.Len(t, plan.Days[0].Activities, 2)
	assert.Empty(t, plan.Days[1].Activities)
	assert.Equal(t, "Watch for pickpockets", plan.Days[0].Safety)
	assert.Equal(t, "Louvre Museum", plan.Days[0].Activities[1].PlaceName, "trailing destination is stripped")
	assert.Nil(t, plan.Days[0].Activities[0].Weather, "decode does not enrich")
	assert.Equal(t, []string{"Iconic landmarks", "Museums match interests"}, plan.Explanation)
}

func TestDecode_CodeFence(t *testing.T) {
	plan, err := planner.Decode("```json\n" + validOutput + "\n```")

	require.NoError(t, err)
	assert.Len(t, plan.Days, 2)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "  ", "empty model output"},
		{"not json", "Here is your itinerary!", "invalid JSON"},
		{"truncated", `{"destination": "Paris", "days": [`, "invalid JSON"},
		{"unknown field", `{"destination":"Paris","days":[],"summary":"s","explanation":[],"budget":3}`, "invalid JSON"},
		{"trailing data", `{"destination":"Paris","days":[],"summary":"s","explanation":[]} {}`, "trailing data"},
		{"missing destination", `{"days":[],"summary":"s","explanation":[]}`, "missing destination"},
		{"missing days", `{"destination":"Paris","summary":"s","explanation":[]}`, "missing days"},
		{"missing summary", `{"destination":"Paris","days":[],"explanation":[]}`, "missing summary"},
		{"missing explanation", `{"destination":"Paris","days":[],"summary":"s"}`, "missing explanation"},
		{"day without date", `{"destination":"Paris","days":[{"day":1,"activities":[]}],"summary":"s","explanation":[]}`, "days[0]: missing date"},
		{"day zero", `{"destination":"Paris","days":[{"day":0,"date":"2025-06-01","activities":[]}],"summary":"s","explanation":[]}`, "invalid day"},
		{"day without activities", `{"destination":"Paris","days":[{"day":1,"date":"2025-06-01"}],"summary":"s","explanation":[]}`, "missing activities"},
		{"activity without placeName", `{"destination":"Paris","days":[{"day":1,"date":"2025-06-01","activities":[{"time":"9","title":"t","duration":"d","notes":"n"}]}],"summary":"s","explanation":[]}`, "missing placeName"},
		{"activity with blank title", `{"destination":"Paris","days":[{"day":1,"date":"2025-06-01","activities":[{"time":"9","placeName":"p","title":" ","duration":"d","notes":"n"}]}],"summary":"s","explanation":[]}`, "empty title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := planner.Decode(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBareVenueName(t *testing.T) {
	assert.Equal(t, "Eiffel Tower", planner.BareVenueName("Eiffel Tower, Paris", "Paris"))
	assert.Equal(t, "Eiffel Tower", planner.BareVenueName("Eiffel Tower, paris", "Paris, France"))
	assert.Equal(t, "Eiffel Tower", planner.BareVenueName("Eiffel Tower, Paris, France", "Paris, France"))
	assert.Equal(t, "Museum, Wing B", planner.BareVenueName("Museum, Wing B", "Paris"))
	assert.Equal(t, "Paris", planner.BareVenueName("Paris", "Paris"))
}

// ---- planner ---------------------------------------------------------------

func TestPlanner_Plan(t *testing.T) {
	gen := &fakeGenerator{text: validOutput}
	obs := &recordingObserver{}
	p := planner.New(gen, obs, nil)

	plan, err := p.Plan(context.Background(), parisRequest())

	require.NoError(t, err)
	assert.Len(t, plan.Days, 2)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Number of days: 2")
	assert.Equal(t, []string{"ok"}, obs.outcomes)
}

func TestPlanner_Plan_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	obs := &recordingObserver{}
	p := planner.New(gen, obs, nil)

	_, err := p.Plan(context.Background(), parisRequest())

	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Len(t, gen.prompts, 1, "generation is not retried")
	assert.Equal(t, []string{"error"}, obs.outcomes)
}

func TestPlanner_Plan_InvalidOutput(t *testing.T) {
	gen := &fakeGenerator{text: `{"destination": "Paris"`}
	obs := &recordingObserver{}
	p := planner.New(gen, obs, nil)

	_, err := p.Plan(context.Background(), parisRequest())

	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "invalid JSON from AI")
	assert.Equal(t, []string{"invalid_output"}, obs.outcomes)
}

func TestPlanner_PlanStream(t *testing.T) {
	third := len(validOutput) / 3
	gen := &fakeGenerator{chunks: []string{validOutput[:third], validOutput[third : 2*third], validOutput[2*third:]}}
	p := planner.New(gen, nil, nil)

	var got []string
	plan, err := p.PlanStream(context.Background(), parisRequest(), func(c string) error {
		got = append(got, c)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, gen.chunks, got)
	assert.Len(t, plan.Days, 2)
}

func TestPlanner_PlanStream_ChunkSinkError(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"{", "}"}}
	p := planner.New(gen, nil, nil)

	_, err := p.PlanStream(context.Background(), parisRequest(), func(string) error {
		return errors.New("client went away")
	})

	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "client went away")
}
