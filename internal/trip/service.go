package trip

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrStoreUnavailable marks connectivity-class store failures, which
	// the summary endpoint reports as a bad gateway rather than a plain
	// internal error.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrOwnerMissing means the authenticated identity has no credential
	// record. A valid token normally guarantees one; this is a defensive
	// check on trip creation.
	ErrOwnerMissing = errors.New("user not found")
)

// UserChecker is the slice of the credential repository the trip flow needs.
type UserChecker interface {
	Exists(ctx context.Context, usermail string) (bool, error)
}

// Service implements the ownership-scoped trip and expense operations.
// The caller identity always comes from the auth gate; every operation is
// scoped to it.
type Service struct {
	repo  *Repository
	users UserChecker
}

func NewService(repo *Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

// Summaries returns the caller's trips with per-trip expense totals.
// An empty slice is a valid result, not an error.
func (s *Service) Summaries(ctx context.Context, owner string) ([]Summary, error) {
	trips, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	ids := make([]uuid.UUID, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}

	totals, err := s.repo.TotalsByTrip(ctx, ids)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	summaries := make([]Summary, 0, len(trips))
	for _, t := range trips {
		summaries = append(summaries, Summary{
			Trip:         t,
			TotalExpense: totals[t.ID],
		})
	}
	return summaries, nil
}

// Details returns a trip's expenses after the ownership-scoped fetch.
func (s *Service) Details(ctx context.Context, owner string, tripID uuid.UUID) ([]Expense, error) {
	if _, err := s.repo.GetOwned(ctx, tripID, owner); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, tripID)
}

// Create inserts a trip owned by the caller and returns its generated id.
func (s *Service) Create(ctx context.Context, owner string, in NewTrip) (uuid.UUID, error) {
	exists, err := s.users.Exists(ctx, owner)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return uuid.Nil, ErrOwnerMissing
	}

	t := &Trip{
		ID:          uuid.New(),
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		Owner:       owner,
	}

	if err := s.repo.InsertTrip(ctx, t); err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

// Update applies a partial update to an owned trip.
func (s *Service) Update(ctx context.Context, owner string, tripID uuid.UUID, patch Patch) error {
	return s.repo.UpdateOwned(ctx, tripID, owner, patch)
}

// Delete removes an owned trip and all of its expenses.
func (s *Service) Delete(ctx context.Context, owner string, tripID uuid.UUID) error {
	return s.repo.DeleteOwnedCascade(ctx, tripID, owner)
}

// AddExpense inserts an expense after verifying the parent trip belongs
// to the caller. The day value is not checked against the trip's date
// range.
func (s *Service) AddExpense(ctx context.Context, owner string, in NewExpense) (uuid.UUID, error) {
	if _, err := s.repo.GetOwned(ctx, in.TripID, owner); err != nil {
		return uuid.Nil, err
	}

	e := &Expense{
		ID:          uuid.New(),
		Item:        in.Item,
		Cost:        in.Cost,
		Day:         in.Day,
		Category:    in.Category,
		DateCreated: time.Now().UTC(),
		TripID:      in.TripID,
	}

	if err := s.repo.InsertExpense(ctx, e); err != nil {
		return uuid.Nil, err
	}
	return e.ID, nil
}

// DeleteExpense removes a single expense after the ownership join through
// its parent trip.
func (s *Service) DeleteExpense(ctx context.Context, owner string, expenseID uuid.UUID) error {
	return s.repo.DeleteExpenseOwned(ctx, expenseID, owner)
}

// classifyStoreErr tags connectivity failures so handlers can answer 502
// instead of 500.
func classifyStoreErr(err error) error {
	if isConnectivityErr(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func isConnectivityErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
