package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
)

// defaultCorpusLimit bounds how many documents one scan compares against.
const defaultCorpusLimit = 1000

// DocumentRepo implements DocumentRepository using PostgreSQL.
type DocumentRepo struct{ db *DB }

// NewDocumentRepo constructs a document repository.
func NewDocumentRepo(db *DB) *DocumentRepo { return &DocumentRepo{db: db} }

// InsertWithCharge performs the charge-and-persist step of a scan in one
// transaction: the conditional credit decrement and the document insert
// either both happen or neither does. A concurrent identical submission that
// wins the unique fingerprint index surfaces as ErrDuplicateContent here, and
// the rollback returns the charged credit.
func (r *DocumentRepo) InsertWithCharge(ctx context.Context, doc *model.Document) (remaining int64, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const charge = `
UPDATE users SET credits = credits - 1
WHERE id=$1 AND credits > 0
RETURNING credits`
	if err = tx.QueryRow(ctx, charge, doc.UserID).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.ErrInsufficientCredit
		}
		return 0, err
	}

	const ins = `
INSERT INTO documents (id, user_id, filename, content, fingerprint)
VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.Exec(ctx, ins, doc.ID, doc.UserID, doc.Filename, doc.Content, doc.Fingerprint); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrDuplicateContent
		}
		return 0, err
	}
	return remaining, nil
}

// GetByID selects a document by ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	const q = `
SELECT id, user_id, filename, content, fingerprint, created_at
FROM documents WHERE id=$1`
	return scanDocument(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByFingerprint selects a document by content fingerprint, across all users.
func (r *DocumentRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*model.Document, error) {
	const q = `
SELECT id, user_id, filename, content, fingerprint, created_at
FROM documents WHERE fingerprint=$1`
	return scanDocument(r.db.Pool.QueryRow(ctx, q, fingerprint))
}

func scanDocument(row pgx.Row) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(&d.ID, &d.UserID, &d.Filename, &d.Content, &d.Fingerprint, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListOthers returns corpus documents excluding one document, in insertion
// order so score ties rank deterministically.
func (r *DocumentRepo) ListOthers(ctx context.Context, excludeID uuid.UUID, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = defaultCorpusLimit
	}
	const q = `
SELECT id, user_id, filename, content, fingerprint, created_at
FROM documents
WHERE id != $1
ORDER BY created_at ASC, id ASC
LIMIT $2`
	return r.queryDocuments(ctx, q, excludeID, limit)
}

// ListNotOwnedBy returns other users' documents in insertion order.
func (r *DocumentRepo) ListNotOwnedBy(ctx context.Context, userID uuid.UUID, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = defaultCorpusLimit
	}
	const q = `
SELECT id, user_id, filename, content, fingerprint, created_at
FROM documents
WHERE user_id != $1
ORDER BY created_at ASC, id ASC
LIMIT $2`
	return r.queryDocuments(ctx, q, userID, limit)
}

// ListByUser returns a user's documents, newest first.
func (r *DocumentRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
SELECT id, user_id, filename, content, fingerprint, created_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	return r.queryDocuments(ctx, q, userID, limit, offset)
}

func (r *DocumentRepo) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var d model.Document
		if err = rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.Content, &d.Fingerprint, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
