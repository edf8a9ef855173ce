package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
)

func TestCreditRequestRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCreditRequestRepo(db)
	ctx := context.Background()
	cr := &model.CreditRequest{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: uuid.Must(uuid.NewV4()),
		Amount: 5,
		Status: model.CreditRequestPending,
	}

	mock.ExpectExec(`INSERT INTO credit_requests \(id, user_id, amount, status\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(cr.ID, cr.UserID, cr.Amount, cr.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, cr))
}

func TestCreditRequestRepo_ListPending(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCreditRequestRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, user_id, amount, status, created_at, resolved_at FROM credit_requests WHERE status = 'pending' ORDER BY created_at ASC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "amount", "status", "created_at", "resolved_at"}).
			AddRow(id, userID, int64(3), model.CreditRequestPending, time.Now(), nil))

	out, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, id, out[0].ID)
	require.Nil(t, out[0].ResolvedAt)
}

func TestCreditRequestRepo_Approve(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCreditRequestRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE credit_requests SET status='approved', resolved_at=now\(\) WHERE id=\$1 AND status='pending' RETURNING id, user_id, amount, status, created_at, resolved_at`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "amount", "status", "created_at", "resolved_at"}).
			AddRow(id, userID, int64(5), model.CreditRequestApproved, time.Now(), nil))
	mock.ExpectQuery(`UPDATE users SET credits = credits \+ \$2 WHERE id=\$1 RETURNING credits`).
		WithArgs(userID, int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"credits"}).AddRow(int64(25)))
	mock.ExpectCommit()

	cr, remaining, err := r.Approve(ctx, id)
	require.NoError(t, err)
	require.Equal(t, userID, cr.UserID)
	require.EqualValues(t, 25, remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRequestRepo_Approve_NotPending(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCreditRequestRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE credit_requests SET status='approved', resolved_at=now\(\) WHERE id=\$1 AND status='pending' RETURNING id, user_id, amount, status, created_at, resolved_at`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := r.Approve(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRequestRepo_Deny(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCreditRequestRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE credit_requests SET status='denied', resolved_at=now\(\) WHERE id=\$1 AND status='pending'`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Deny(ctx, id))

	mock.ExpectExec(`UPDATE credit_requests SET status='denied', resolved_at=now\(\) WHERE id=\$1 AND status='pending'`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Deny(ctx, id), errs.ErrNotFound)
}
