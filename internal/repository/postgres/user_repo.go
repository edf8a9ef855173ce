package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row with the initial credit balance.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, salt_auth, role, credits, last_reset)
VALUES ($1, $2, $3, $4, $5, $6, CURRENT_DATE)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth, u.Role, u.Credits)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, role, credits, last_reset, created_at
FROM users WHERE id=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, role, credits, last_reset, created_at
FROM users WHERE username=$1`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.Role, &u.Credits, &u.LastReset, &u.CreatedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// GetBalance returns the current credit balance.
func (r *UserRepo) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	const q = `SELECT credits FROM users WHERE id=$1`
	var credits int64
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return credits, nil
}

// DecrementIfPositive takes one credit only when the balance is positive.
// The conditional update makes concurrent scans by the same user linearizable:
// at most `credits` of them can succeed.
func (r *UserRepo) DecrementIfPositive(ctx context.Context, id uuid.UUID) (bool, int64, error) {
	const q = `
UPDATE users SET credits = credits - 1
WHERE id=$1 AND credits > 0
RETURNING credits`
	var remaining int64
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&remaining)
	switch {
	case err == nil:
		return true, remaining, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, 0, nil
	default:
		return false, 0, err
	}
}

// ResetIfNewDay applies the daily allotment once per calendar day. The date
// guard makes repeated invocations on the same day no-ops.
func (r *UserRepo) ResetIfNewDay(ctx context.Context, id uuid.UUID, allotment int64) (bool, error) {
	const q = `
UPDATE users SET credits=$2, last_reset=CURRENT_DATE
WHERE id=$1 AND last_reset < CURRENT_DATE`
	tag, err := r.db.Pool.Exec(ctx, q, id, allotment)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddCredits grants extra credits and returns the new balance.
func (r *UserRepo) AddCredits(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	const q = `
UPDATE users SET credits = credits + $2
WHERE id=$1
RETURNING credits`
	var remaining int64
	if err := r.db.Pool.QueryRow(ctx, q, id, amount).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return remaining, nil
}
