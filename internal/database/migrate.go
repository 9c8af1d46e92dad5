package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the three tables when they do not exist yet.
// The expense cascade is performed by the delete operation itself, so no
// ON DELETE action is declared on the foreign keys.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*Trip)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("usermail")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create trips table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*Expense)(nil)).
		IfNotExists().
		ForeignKey(`("trip_id") REFERENCES "trips" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create expenses table: %w", err)
	}

	return nil
}
