package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/trip-expense-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles credential persistence.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new, unverified user.
func (r *Repository) Create(ctx context.Context, usermail, firstName, lastName, hashedPassword string) (*User, error) {
	dbUser := &database.User{
		Usermail:       usermail,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: hashedPassword,
		EmailVerified:  false,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, usermail string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("usermail = ?", usermail).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Exists reports whether a credential record exists for the email.
func (r *Repository) Exists(ctx context.Context, usermail string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("usermail = ?", usermail).
		Exists(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// GetByVerificationToken retrieves an unverified user by verification token.
func (r *Repository) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("verification_token = ?", token).
		Where("email_verified = ?", false).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by verification token: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateVerificationToken stores a fresh verification token on an
// unverified user.
func (r *Repository) UpdateVerificationToken(ctx context.Context, usermail, token string) error {
	now := time.Now()
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("verification_token = ?", token).
		Set("verification_sent_at = ?", now).
		Where("usermail = ?", usermail).
		Where("email_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkEmailVerified flips the verified flag and clears the token. It is the
// one mutation the user record sees after creation.
func (r *Repository) MarkEmailVerified(ctx context.Context, usermail string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verified = ?", true).
		Set("verification_token = ?", nil).
		Set("verification_sent_at = ?", nil).
		Where("usermail = ?", usermail).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		Usermail:           dbu.Usermail,
		FirstName:          dbu.FirstName,
		LastName:           dbu.LastName,
		HashedPassword:     dbu.HashedPassword,
		EmailVerified:      dbu.EmailVerified,
		VerificationToken:  dbu.VerificationToken,
		VerificationSentAt: dbu.VerificationSentAt,
	}
}
