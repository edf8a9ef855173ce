package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/akulakov/docscan/internal/errs"
	"github.com/akulakov/docscan/internal/model"
)

func testDoc() *model.Document {
	return &model.Document{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uuid.Must(uuid.NewV4()),
		Filename:    "report.txt",
		Content:     "quarterly numbers",
		Fingerprint: "abc123",
	}
}

const (
	chargeSQL = `UPDATE users SET credits = credits - 1 WHERE id=\$1 AND credits > 0 RETURNING credits`
	insertSQL = `INSERT INTO documents \(id, user_id, filename, content, fingerprint\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`
)

func TestDocumentRepo_InsertWithCharge_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDocumentRepo(db)
	ctx := context.Background()
	doc := testDoc()

	mock.ExpectBegin()
	mock.ExpectQuery(chargeSQL).
		WithArgs(doc.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"credits"}).AddRow(int64(19)))
	mock.ExpectExec(insertSQL).
		WithArgs(doc.ID, doc.UserID, doc.Filename, doc.Content, doc.Fingerprint).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	remaining, err := r.InsertWithCharge(ctx, doc)
	require.NoError(t, err)
	require.EqualValues(t, 19, remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_InsertWithCharge_InsufficientCredit(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDocumentRepo(db)
	ctx := context.Background()
	doc := testDoc()

	mock.ExpectBegin()
	mock.ExpectQuery(chargeSQL).
		WithArgs(doc.UserID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := r.InsertWithCharge(ctx, doc)
	require.ErrorIs(t, err, errs.ErrInsufficientCredit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_InsertWithCharge_ConcurrentDuplicateRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDocumentRepo(db)
	ctx := context.Background()
	doc := testDoc()

	// A racing submission won the unique fingerprint index; the rollback
	// must return the charged credit.
	mock.ExpectBegin()
	mock.ExpectQuery(chargeSQL).
		WithArgs(doc.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"credits"}).AddRow(int64(19)))
	mock.ExpectExec(insertSQL).
		WithArgs(doc.ID, doc.UserID, doc.Filename, doc.Content, doc.Fingerprint).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := r.InsertWithCharge(ctx, doc)
	require.ErrorIs(t, err, errs.ErrDuplicateContent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByFingerprint(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDocumentRepo(db)
	ctx := context.Background()
	doc := testDoc()

	mock.ExpectQuery(`SELECT id, user_id, filename, content, fingerprint, created_at FROM documents WHERE fingerprint=\$1`).
		WithArgs(doc.Fingerprint).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "filename", "content", "fingerprint", "created_at"}).
			AddRow(doc.ID, doc.UserID, doc.Filename, doc.Content, doc.Fingerprint, time.Now()))
	got, err := r.GetByFingerprint(ctx, doc.Fingerprint)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)

	mock.ExpectQuery(`SELECT id, user_id, filename, content, fingerprint, created_at FROM documents WHERE fingerprint=\$1`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByFingerprint(ctx, "unknown")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDocumentRepo_ListOthers(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewDocumentRepo(db)
	ctx := context.Background()
	exclude := uuid.Must(uuid.NewV4())
	d1, d2 := testDoc(), testDoc()

	mock.ExpectQuery(`SELECT id, user_id, filename, content, fingerprint, created_at FROM documents WHERE id != \$1 ORDER BY created_at ASC, id ASC LIMIT \$2`).
		WithArgs(exclude, 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "filename", "content", "fingerprint", "created_at"}).
			AddRow(d1.ID, d1.UserID, d1.Filename, d1.Content, d1.Fingerprint, time.Now()).
			AddRow(d2.ID, d2.UserID, d2.Filename, d2.Content, d2.Fingerprint, time.Now()))

	docs, err := r.ListOthers(ctx, exclude, 50)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, d1.ID, docs[0].ID)
}
