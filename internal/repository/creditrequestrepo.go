package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/model"
)

// CreditRequestRepository stores user credit requests and their resolution.
type CreditRequestRepository interface {
	// Create inserts a pending request.
	Create(ctx context.Context, r *model.CreditRequest) error
	// ListPending returns unresolved requests, oldest first.
	ListPending(ctx context.Context) ([]model.CreditRequest, error)
	// Approve marks a pending request approved and grants its amount to the
	// requesting user in one transaction, returning the request and the
	// user's new balance. errs.ErrNotFound if the request is not pending.
	Approve(ctx context.Context, id uuid.UUID) (*model.CreditRequest, int64, error)
	// Deny marks a pending request denied. errs.ErrNotFound if not pending.
	Deny(ctx context.Context, id uuid.UUID) error
}
