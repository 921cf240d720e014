package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+password_reset_tokens\s*\(token,\s*user_id,\s*expires_at\)`).
		WithArgs("abc", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), "u1", "abc", exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+password_reset_tokens`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), "u1", "abc", time.Now())
	require.ErrorContains(t, err, "db error: db down")
}

func TestConsume_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Now().Add(30 * time.Minute)
	created := time.Now().Add(-30 * time.Minute)

	mock.ExpectQuery(`(?s)DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+user_id,\s*expires_at,\s*created_at`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "created_at"}).AddRow("u1", exp, created))

	got, err := repo.Consume(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "abc", got.Token)
	require.True(t, got.Expires.Equal(exp))
}

func TestConsume_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`DELETE\s+FROM\s+password_reset_tokens`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+expires_at\s*<\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
}
