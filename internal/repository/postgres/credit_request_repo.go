package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
)

// CreditRequestRepo implements CreditRequestRepository using PostgreSQL.
type CreditRequestRepo struct{ db *DB }

// NewCreditRequestRepo constructs a credit request repository.
func NewCreditRequestRepo(db *DB) *CreditRequestRepo { return &CreditRequestRepo{db: db} }

// Create inserts a pending request.
func (r *CreditRequestRepo) Create(ctx context.Context, cr *model.CreditRequest) error {
	const q = `
INSERT INTO credit_requests (id, user_id, amount, status)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, cr.ID, cr.UserID, cr.Amount, cr.Status)
	return err
}

// ListPending returns unresolved requests, oldest first.
func (r *CreditRequestRepo) ListPending(ctx context.Context) ([]model.CreditRequest, error) {
	const q = `
SELECT id, user_id, amount, status, created_at, resolved_at
FROM credit_requests
WHERE status = 'pending'
ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CreditRequest
	for rows.Next() {
		var cr model.CreditRequest
		if err = rows.Scan(&cr.ID, &cr.UserID, &cr.Amount, &cr.Status, &cr.CreatedAt, &cr.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// Approve resolves a pending request and grants the amount in one
// transaction. The status guard makes double-approval impossible.
func (r *CreditRequestRepo) Approve(ctx context.Context, id uuid.UUID) (cr *model.CreditRequest, remaining int64, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
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

	const resolve = `
UPDATE credit_requests SET status='approved', resolved_at=now()
WHERE id=$1 AND status='pending'
RETURNING id, user_id, amount, status, created_at, resolved_at`
	cr = &model.CreditRequest{}
	if err = tx.QueryRow(ctx, resolve, id).Scan(&cr.ID, &cr.UserID, &cr.Amount, &cr.Status, &cr.CreatedAt, &cr.ResolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.ErrNotFound
		}
		return nil, 0, err
	}

	const grant = `
UPDATE users SET credits = credits + $2
WHERE id=$1
RETURNING credits`
	if err = tx.QueryRow(ctx, grant, cr.UserID, cr.Amount).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.ErrNotFound
		}
		return nil, 0, err
	}
	return cr, remaining, nil
}

// Deny resolves a pending request without granting anything.
func (r *CreditRequestRepo) Deny(ctx context.Context, id uuid.UUID) error {
	const q = `
UPDATE credit_requests SET status='denied', resolved_at=now()
WHERE id=$1 AND status='pending'`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
