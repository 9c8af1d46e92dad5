package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/trip-expense-api/internal/database"
)

var (
	ErrTripNotFound    = errors.New("trip not found or not owned by the current user")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotOwner        = errors.New("expense belongs to another user's trip")
)

// Repository handles trip and expense persistence. Every read and write
// that touches a trip is scoped by (id, owner); expense authorization
// joins through the parent trip.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListByOwner returns all trips owned by the user, in store order.
func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]Trip, error) {
	var dbTrips []database.Trip
	err := r.db.NewSelect().
		Model(&dbTrips).
		Where("user_id = ?", owner).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	trips := make([]Trip, 0, len(dbTrips))
	for i := range dbTrips {
		trips = append(trips, mapDBTrip(&dbTrips[i]))
	}
	return trips, nil
}

type expenseSum struct {
	TripID uuid.UUID `bun:"trip_id"`
	Total  float64   `bun:"total"`
}

// TotalsByTrip returns the summed expense cost per trip id. Trips without
// expenses are absent from the map.
func (r *Repository) TotalsByTrip(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(tripIDs) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	var sums []expenseSum
	err := r.db.NewSelect().
		Model((*database.Expense)(nil)).
		Column("trip_id").
		ColumnExpr("SUM(cost) AS total").
		Where("trip_id IN (?)", bun.In(tripIDs)).
		Group("trip_id").
		Scan(ctx, &sums)

	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	totals := make(map[uuid.UUID]float64, len(sums))
	for _, s := range sums {
		totals[s.TripID] = s.Total
	}
	return totals, nil
}

// GetOwned fetches a trip by (id, owner). A trip that exists but belongs
// to someone else is indistinguishable from a missing one.
func (r *Repository) GetOwned(ctx context.Context, id uuid.UUID, owner string) (*Trip, error) {
	dbTrip := new(database.Trip)
	err := r.db.NewSelect().
		Model(dbTrip).
		Where("id = ?", id).
		Where("user_id = ?", owner).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	t := mapDBTrip(dbTrip)
	return &t, nil
}

// ListExpenses returns all expenses of a trip, in store order.
func (r *Repository) ListExpenses(ctx context.Context, tripID uuid.UUID) ([]Expense, error) {
	var dbExpenses []database.Expense
	err := r.db.NewSelect().
		Model(&dbExpenses).
		Where("trip_id = ?", tripID).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]Expense, 0, len(dbExpenses))
	for i := range dbExpenses {
		expenses = append(expenses, mapDBExpense(&dbExpenses[i]))
	}
	return expenses, nil
}

// InsertTrip persists a new trip. The caller assigns the id.
func (r *Repository) InsertTrip(ctx context.Context, t *Trip) error {
	dbTrip := &database.Trip{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Budget:      t.Budget,
		UserID:      t.Owner,
	}

	if _, err := r.db.NewInsert().Model(dbTrip).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// UpdateOwned applies the non-nil patch fields to the trip identified by
// (id, owner). An empty patch degrades to an existence check.
func (r *Repository) UpdateOwned(ctx context.Context, id uuid.UUID, owner string, patch Patch) error {
	if patch.IsEmpty() {
		exists, err := r.db.NewSelect().
			Model((*database.Trip)(nil)).
			Where("id = ?", id).
			Where("user_id = ?", owner).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check trip existence: %w", err)
		}
		if !exists {
			return ErrTripNotFound
		}
		return nil
	}

	q := r.db.NewUpdate().
		Model((*database.Trip)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", owner)

	if patch.Destination != nil {
		q = q.Set("destination = ?", *patch.Destination)
	}
	if patch.StartDate != nil {
		q = q.Set("start_date = ?", *patch.StartDate)
	}
	if patch.EndDate != nil {
		q = q.Set("end_date = ?", *patch.EndDate)
	}
	if patch.Budget != nil {
		q = q.Set("budget = ?", *patch.Budget)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTripNotFound
	}

	return nil
}

// DeleteOwnedCascade verifies ownership, then deletes the trip's expenses
// and the trip itself in one transaction. The cascade is explicit here,
// not a database-level FK action.
func (r *Repository) DeleteOwnedCascade(ctx context.Context, id uuid.UUID, owner string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*database.Trip)(nil)).
			Where("id = ?", id).
			Where("user_id = ?", owner).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check trip ownership: %w", err)
		}
		if !exists {
			return ErrTripNotFound
		}

		if _, err := tx.NewDelete().
			Model((*database.Expense)(nil)).
			Where("trip_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete trip expenses: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*database.Trip)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete trip: %w", err)
		}

		return nil
	})
}

// InsertExpense persists a new expense. The caller assigns the id and
// creation timestamp.
func (r *Repository) InsertExpense(ctx context.Context, e *Expense) error {
	dbExpense := &database.Expense{
		ID:          e.ID,
		Item:        e.Item,
		Cost:        e.Cost,
		Day:         e.Day,
		Category:    e.Category,
		DateCreated: e.DateCreated,
		TripID:      e.TripID,
	}

	if _, err := r.db.NewInsert().Model(dbExpense).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// DeleteExpenseOwned locates the expense first and only then checks
// ownership through the parent trip, so a missing expense and a foreign
// one produce different errors. This asymmetry with GetOwned is the
// historical contract of the delete endpoint.
func (r *Repository) DeleteExpenseOwned(ctx context.Context, id uuid.UUID, owner string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dbExpense := new(database.Expense)
		err := tx.NewSelect().
			Model(dbExpense).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrExpenseNotFound
			}
			return fmt.Errorf("failed to get expense: %w", err)
		}

		owned, err := tx.NewSelect().
			Model((*database.Trip)(nil)).
			Where("id = ?", dbExpense.TripID).
			Where("user_id = ?", owner).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check trip ownership: %w", err)
		}
		if !owned {
			return ErrNotOwner
		}

		if _, err := tx.NewDelete().
			Model((*database.Expense)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}

		return nil
	})
}

func mapDBTrip(t *database.Trip) Trip {
	return Trip{
		ID:          t.ID,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Budget:      t.Budget,
		Owner:       t.UserID,
	}
}

func mapDBExpense(e *database.Expense) Expense {
	return Expense{
		ID:          e.ID,
		Item:        e.Item,
		Cost:        e.Cost,
		Day:         e.Day,
		Category:    e.Category,
		DateCreated: e.DateCreated,
		TripID:      e.TripID,
	}
}
