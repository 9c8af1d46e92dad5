package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User row. The email address is the primary key; there is no surrogate id.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Usermail           string     `bun:"usermail,pk"`
	FirstName          string     `bun:"first_name"`
	LastName           string     `bun:"last_name"`
	HashedPassword     string     `bun:"hashed_password"`
	EmailVerified      bool       `bun:"email_verified"`
	VerificationToken  *string    `bun:"verification_token"`
	VerificationSentAt *time.Time `bun:"verification_sent_at"`
}

// Trip row, owned by exactly one user. The owner is never reassigned.
type Trip struct {
	bun.BaseModel `bun:"table:trips,alias:t"`

	ID          uuid.UUID  `bun:"id,pk"`
	Destination string     `bun:"destination"`
	StartDate   time.Time  `bun:"start_date"`
	EndDate     *time.Time `bun:"end_date"`
	Budget      *float64   `bun:"budget"`
	UserID      string     `bun:"user_id"`
}

// Expense row. Ownership is derived through the parent trip, not stored.
type Expense struct {
	bun.BaseModel `bun:"table:expenses,alias:e"`

	ID          uuid.UUID `bun:"id,pk"`
	Item        string    `bun:"item"`
	Cost        float64   `bun:"cost"`
	Day         int       `bun:"day"`
	Category    string    `bun:"category"`
	DateCreated time.Time `bun:"date_created"`
	TripID      uuid.UUID `bun:"trip_id"`
}
