package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// Generator is a text-generation backend. GeminiGenerator is the production
// implementation; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string, onChunk func(string) error) (string, error)
}

// Observer receives the outcome of each generation. metrics.Recorder
// satisfies it; nil disables observation.
type Observer interface {
	ObserveGeneration(outcome string, d time.Duration)
}

// Planner acquires itinerary plans. Every failure it returns wraps
// domain.ErrGeneration; nothing is retried.
type Planner struct {
	gen      Generator
	observer Observer
	logger   *slog.Logger
}

// New constructs a Planner. observer may be nil.
func New(gen Generator, observer Observer, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{gen: gen, observer: observer, logger: logger}
}

// Plan generates a plan for req in blocking mode. req must already be validated.
func (p *Planner) Plan(ctx context.Context, req domain.TripRequest) (*domain.ItineraryPlan, error) {
	return p.run(ctx, req, func(prompt string) (string, error) {
		return p.gen.Generate(ctx, prompt)
	})
}

// PlanStream is Plan with incremental delivery of the raw model text to onChunk.
func (p *Planner) PlanStream(ctx context.Context, req domain.TripRequest, onChunk func(string) error) (*domain.ItineraryPlan, error) {
	return p.run(ctx, req, func(prompt string) (string, error) {
		return p.gen.Stream(ctx, prompt, onChunk)
	})
}

func (p *Planner) run(ctx context.Context, req domain.TripRequest, call func(prompt string) (string, error)) (*domain.ItineraryPlan, error) {
	start := time.Now()
	text, err := call(BuildPrompt(req))
	if err != nil {
		p.observe("error", start)
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	plan, err := Decode(text)
	if err != nil {
		p.observe("invalid_output", start)
		p.logger.ErrorContext(ctx, "model output rejected",
			"destination", req.Destination,
			"error", err,
			"output_bytes", len(text),
		)
		return nil, fmt.Errorf("%w: invalid JSON from AI: %w", domain.ErrGeneration, err)
	}

	p.observe("ok", start)
	if n := req.NumberOfDays(); len(plan.Days) != n {
		p.logger.WarnContext(ctx, "model returned unexpected day count",
			"requested_days", n,
			"returned_days", len(plan.Days),
		)
	}
	return plan, nil
}

func (p *Planner) observe(outcome string, start time.Time) {
	if p.observer != nil {
		p.observer.ObserveGeneration(outcome, time.Since(start))
	}
}
