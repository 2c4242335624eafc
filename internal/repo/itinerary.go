// Package repo contains all database access logic for the itinerary API.
// Saved itineraries live in a single table; the generated plan is stored
// as JSONB exactly as it was returned to the client.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripsmith/itinerary-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ItineraryRepo defines the persistence operations for saved itineraries.
// Every read and delete is scoped to an owner: rows belonging to another
// user behave exactly like missing rows.
type ItineraryRepo interface {
	// Create inserts a new itinerary and returns the persisted record with
	// id, created_at and updated_at populated.
	Create(ctx context.Context, it domain.SavedItinerary) (domain.SavedItinerary, error)

	// GetByID returns domain.ErrNotFound if no itinerary with that id belongs to owner.
	GetByID(ctx context.Context, owner, id uuid.UUID) (domain.SavedItinerary, error)

	// ListByOwner returns one page of owner's itineraries, newest first,
	// together with the owner's total count.
	ListByOwner(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.SavedItinerary, int64, error)

	// Delete returns domain.ErrNotFound if no itinerary with that id belongs to owner.
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const itineraryColumns = `id, owner_id, destination, start_date, end_date, interests,
		travellers, budget::float8, plan, created_at, updated_at`

func (r *pgItineraryRepo) Create(ctx context.Context, it domain.SavedItinerary) (domain.SavedItinerary, error) {
	const q = `
		INSERT INTO itineraries (owner_id, destination, start_date, end_date, interests, travellers, budget, plan)
		VALUES (@owner_id, @destination, @start_date, @end_date, @interests, @travellers, @budget, @plan)
		RETURNING ` + itineraryColumns

	plan, err := marshalPlan(it.Plan)
	if err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("repo.ItineraryRepo.Create: encode plan: %w", err)
	}

	args := pgx.NamedArgs{
		"owner_id":    it.OwnerID,
		"destination": it.Trip.Destination,
		"start_date":  it.Trip.StartDate,
		"end_date":    it.Trip.EndDate,
		"interests":   it.Trip.Interests,
		"travellers":  nullableJSON(it.Trip.Travellers),
		"budget":      it.Trip.Budget, // nil becomes NULL
		"plan":        plan,
	}

	result, err := scanItinerary(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("repo.ItineraryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) GetByID(ctx context.Context, owner, id uuid.UUID) (domain.SavedItinerary, error) {
	const q = `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE id = @id AND owner_id = @owner_id`

	result, err := scanItinerary(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner}))
	if err != nil {
		return domain.SavedItinerary{}, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) ListByOwner(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.SavedItinerary, int64, error) {
	const countQ = `SELECT count(*) FROM itineraries WHERE owner_id = @owner_id`
	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"owner_id": owner}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: count: %w", err)
	}

	const q = `
		SELECT ` + itineraryColumns + `
		FROM itineraries
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"owner_id": owner,
		"limit":    p.Limit,
		"offset":   p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	out := []domain.SavedItinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: scan: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListByOwner: rows: %w", err)
	}
	return out, total, nil
}

func (r *pgItineraryRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	const q = `DELETE FROM itineraries WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItinerary(s scanner) (domain.SavedItinerary, error) {
	var (
		it         domain.SavedItinerary
		id, owner  pgtype.UUID
		start, end pgtype.Date
		budget     pgtype.Float8
		travellers []byte
		plan       []byte
	)

	err := s.Scan(&id, &owner, &it.Trip.Destination, &start, &end, &it.Trip.Interests,
		&travellers, &budget, &plan, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SavedItinerary{}, domain.ErrNotFound
		}
		return domain.SavedItinerary{}, err
	}

	it.ID = uuid.UUID(id.Bytes)
	it.OwnerID = uuid.UUID(owner.Bytes)
	it.Trip.StartDate = start.Time
	it.Trip.EndDate = end.Time
	if len(travellers) > 0 {
		it.Trip.Travellers = json.RawMessage(travellers)
	}
	if budget.Valid {
		b := budget.Float64
		it.Trip.Budget = &b
	}
	if len(plan) > 0 {
		var p domain.ItineraryPlan
		if err := json.Unmarshal(plan, &p); err != nil {
			return domain.SavedItinerary{}, fmt.Errorf("decode plan: %w", err)
		}
		it.Plan = &p
	}
	return it, nil
}

// marshalPlan returns nil (SQL NULL) for a request saved without a plan.
func marshalPlan(p *domain.ItineraryPlan) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
