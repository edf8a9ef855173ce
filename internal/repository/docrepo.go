package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/akulakov/docscan/internal/model"
)

// DocumentRepository persists immutable documents keyed by content fingerprint.
type DocumentRepository interface {
	// InsertWithCharge deducts one credit from the document owner and inserts
	// the document in a single transaction, returning the remaining balance.
	// Fails with errs.ErrInsufficientCredit when the balance is zero and with
	// errs.ErrDuplicateContent when the fingerprint is already stored; in both
	// cases the transaction is rolled back and no credit is kept deducted.
	InsertWithCharge(ctx context.Context, doc *model.Document) (remaining int64, err error)

	// GetByID loads a document by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// GetByFingerprint looks up a document by content fingerprint across all
	// users. errs.ErrNotFound when the content is novel.
	GetByFingerprint(ctx context.Context, fingerprint string) (*model.Document, error)

	// ListOthers returns up to limit corpus documents excluding the given
	// document, in insertion order.
	ListOthers(ctx context.Context, excludeID uuid.UUID, limit int) ([]model.Document, error)
	// ListNotOwnedBy returns up to limit documents owned by other users, in
	// insertion order.
	ListNotOwnedBy(ctx context.Context, userID uuid.UUID, limit int) ([]model.Document, error)
	// ListByUser returns a user's documents, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Document, error)
}
