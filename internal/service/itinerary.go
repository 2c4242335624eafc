// Package service contains the business logic for the itinerary API.
// Services validate inputs, enforce business rules, and orchestrate the
// planner, the enrichment fan-out and the repo. No SQL or HTTP lives here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// Planner produces a validated plan from a trip request.
type Planner interface {
	Plan(ctx context.Context, req domain.TripRequest) (*domain.ItineraryPlan, error)
	PlanStream(ctx context.Context, req domain.TripRequest, onChunk func(string) error) (*domain.ItineraryPlan, error)
}

// Enricher attaches images and weather to a plan. It never fails.
type Enricher interface {
	Enrich(ctx context.Context, plan *domain.ItineraryPlan) *domain.ItineraryPlan
}

// ItineraryService runs the generation pipeline: validate, generate, enrich.
type ItineraryService struct {
	planner  Planner
	enricher Enricher
	logger   *slog.Logger
}

// NewItineraryService constructs an ItineraryService.
func NewItineraryService(p Planner, e Enricher, logger *slog.Logger) *ItineraryService {
	return &ItineraryService{planner: p, enricher: e, logger: logger}
}

// Generate validates req, generates a plan and enriches it.
// A validation error is returned before any outbound call is made; a
// generation error is the only other failure. Enrichment problems show up
// as placeholders inside the returned plan.
func (s *ItineraryService) Generate(ctx context.Context, req domain.TripRequest) (*domain.ItineraryPlan, error) {
	return s.run(ctx, "service.ItineraryService.Generate", req, func() (*domain.ItineraryPlan, error) {
		return s.planner.Plan(ctx, req)
	})
}

// GenerateStream is Generate with the raw model output forwarded to onChunk
// while generation is in progress. The returned plan is enriched exactly as
// in Generate.
func (s *ItineraryService) GenerateStream(ctx context.Context, req domain.TripRequest, onChunk func(string) error) (*domain.ItineraryPlan, error) {
	return s.run(ctx, "service.ItineraryService.GenerateStream", req, func() (*domain.ItineraryPlan, error) {
		return s.planner.PlanStream(ctx, req, onChunk)
	})
}

func (s *ItineraryService) run(ctx context.Context, op string, req domain.TripRequest, plan func() (*domain.ItineraryPlan, error)) (*domain.ItineraryPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	p, err := plan()
	if err != nil {
		s.logger.ErrorContext(ctx, "itinerary generation failed",
			"destination", req.Destination,
			"days", req.NumberOfDays(),
			"error", err,
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p = s.enricher.Enrich(ctx, p)
	s.logger.InfoContext(ctx, "itinerary generated",
		"destination", req.Destination,
		"days", len(p.Days),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}
