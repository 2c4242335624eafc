package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripsmith/itinerary-api/internal/domain"
	"github.com/tripsmith/itinerary-api/internal/repo"
)

// SavedItineraryService manages the itineraries a user has kept.
type SavedItineraryService struct {
	repo repo.ItineraryRepo
}

// NewSavedItineraryService constructs a SavedItineraryService backed by r.
func NewSavedItineraryService(r repo.ItineraryRepo) *SavedItineraryService {
	return &SavedItineraryService{repo: r}
}

// Save validates and persists it for owner. Any OwnerID already set on it is
// ignored.
func (s *SavedItineraryService) Save(ctx context.Context, owner uuid.UUID, it domain.SavedItinerary) (domain.SavedItinerary, error) {
	if err := validateSaved(it); err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("service.SavedItineraryService.Save: %w", err)
	}
	it.OwnerID = owner
	if it.Plan != nil && it.Plan.SchemaVersion == 0 {
		it.Plan.SchemaVersion = domain.PlanSchemaVersion
	}

	saved, err := s.repo.Create(ctx, it)
	if err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("service.SavedItineraryService.Save: %w", err)
	}
	return saved, nil
}

// Get returns one of owner's itineraries.
func (s *SavedItineraryService) Get(ctx context.Context, owner, id uuid.UUID) (domain.SavedItinerary, error) {
	it, err := s.repo.GetByID(ctx, owner, id)
	if err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("service.SavedItineraryService.Get: %w", err)
	}
	return it, nil
}

// ListPaged returns one page of owner's itineraries and the total count.
func (s *SavedItineraryService) ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.SavedItinerary, int64, error) {
	items, total, err := s.repo.ListByOwner(ctx, owner, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.SavedItineraryService.ListPaged: %w", err)
	}
	return items, total, nil
}

// Delete removes one of owner's itineraries.
func (s *SavedItineraryService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("service.SavedItineraryService.Delete: %w", err)
	}
	return nil
}

func validateSaved(it domain.SavedItinerary) error {
	if err := it.Trip.Validate(); err != nil {
		return err
	}
	if it.Plan == nil {
		return nil
	}
	if v := it.Plan.SchemaVersion; v != 0 && v != domain.PlanSchemaVersion {
		return fmt.Errorf("%w: unsupported plan schemaVersion %d", domain.ErrValidation, v)
	}
	for i, d := range it.Plan.Days {
		if d.Date == "" {
			return fmt.Errorf("%w: plan.days[%d]: date is required", domain.ErrValidation, i)
		}
	}
	return nil
}
