package domain

import (
	"time"

	"github.com/google/uuid"
)

// SavedItinerary is a trip request and (optionally) its generated plan,
// persisted for one user. Owner scoping is enforced by the repo: a user never
// sees another user's itineraries.
type SavedItinerary struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Trip      TripRequest
	Plan      *ItineraryPlan // nil when only the request was saved
	CreatedAt time.Time
	UpdatedAt time.Time
}
