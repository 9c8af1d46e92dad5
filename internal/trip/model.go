package trip

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a journey owned by exactly one user. The owner is fixed at
// creation; there is no reassignment operation.
type Trip struct {
	ID          uuid.UUID
	Destination string
	StartDate   time.Time
	EndDate     *time.Time
	Budget      *float64
	Owner       string
}

// Summary is a trip plus the sum of its expense costs (0 when none).
type Summary struct {
	Trip
	TotalExpense float64
}

// Expense belongs to exactly one trip. Its effective owner, for
// authorization, is the trip owner; ownership checks join through Trip.
type Expense struct {
	ID          uuid.UUID
	Item        string
	Cost        float64
	Day         int
	Category    string
	DateCreated time.Time
	TripID      uuid.UUID
}

// NewTrip is the creation payload.
type NewTrip struct {
	Destination string
	StartDate   time.Time
	EndDate     *time.Time
	Budget      *float64
}

// NewExpense is the expense creation payload. Day is a relative
// day-of-trip, not a calendar date; whether it falls inside the trip's
// date range is not checked.
type NewExpense struct {
	TripID   uuid.UUID
	Item     string
	Cost     float64
	Day      int
	Category string
}

// Patch carries a partial trip update. Nil fields leave the stored value
// unchanged.
type Patch struct {
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Destination == nil && p.StartDate == nil && p.EndDate == nil && p.Budget == nil
}
