// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/model"
)

// UserRepository provides account CRUD plus the credit ledger primitives.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetBalance returns the current credit balance.
	GetBalance(ctx context.Context, id uuid.UUID) (int64, error)
	// DecrementIfPositive atomically takes one credit if the balance is
	// positive, reporting whether a credit was taken and the remainder.
	// Linearizable under concurrent calls for the same user.
	DecrementIfPositive(ctx context.Context, id uuid.UUID) (bool, int64, error)
	// ResetIfNewDay sets the balance to allotment at most once per calendar
	// day (date granularity). Reports whether a reset happened.
	ResetIfNewDay(ctx context.Context, id uuid.UUID, allotment int64) (bool, error)
	// AddCredits grants extra credits and returns the new balance.
	AddCredits(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
}
