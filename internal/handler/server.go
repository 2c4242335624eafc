// Package handler implements the HTTP handlers for the itinerary API.
// All handlers are methods on Server. Methods are split into files by
// resource (health.go, generate.go, itinerary.go, export.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripsmith/itinerary-api/apidoc"
	"github.com/tripsmith/itinerary-api/internal/domain"
)

// ItineraryGenerator runs the validate, generate and enrich pipeline.
// Interfaces are declared here, in the consumer package, so handler tests
// can inject mocks without touching the network or the database.
type ItineraryGenerator interface {
	Generate(ctx context.Context, req domain.TripRequest) (*domain.ItineraryPlan, error)
	GenerateStream(ctx context.Context, req domain.TripRequest, onChunk func(string) error) (*domain.ItineraryPlan, error)
}

// SavedItineraryServicer defines the operations on a user's saved itineraries.
type SavedItineraryServicer interface {
	Save(ctx context.Context, owner uuid.UUID, it domain.SavedItinerary) (domain.SavedItinerary, error)
	Get(ctx context.Context, owner, id uuid.UUID) (domain.SavedItinerary, error)
	ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.SavedItinerary, int64, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// ExportServicer flattens a saved itinerary for export.
type ExportServicer interface {
	Export(ctx context.Context, owner, id uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies. saved and export may be nil, in
// which case the saved-itinerary routes are not mounted.
type Server struct {
	generator ItineraryGenerator
	saved     SavedItineraryServicer
	export    ExportServicer
	logger    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(generator ItineraryGenerator, saved SavedItineraryServicer, export ExportServicer, logger *slog.Logger) *Server {
	return &Server{generator: generator, saved: saved, export: export, logger: logger}
}

// Routes returns the API router. auth guards the saved-itinerary routes and
// is required whenever those routes are mounted.
func (s *Server) Routes(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ai/generate-response", s.GenerateResponse)

		if s.saved == nil {
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/itineraries", s.CreateItinerary)
			r.Get("/itineraries", s.ListItineraries)
			r.Get("/itineraries/{id}", s.GetItinerary)
			r.Delete("/itineraries/{id}", s.DeleteItinerary)
			if s.export != nil {
				r.Get("/itineraries/{id}/export", s.ExportItinerary)
			}
		})
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(apidoc.OpenAPI)
}
