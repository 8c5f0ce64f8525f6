package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

func TestWrapErrClassifiesPostgresConstraints(t *testing.T) {
	err := wrapErr("insert prediction", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23514", Message: "check violation"}))
	assert.ErrorIs(t, err, ErrConstraintViolation)

	err = wrapErr("insert prediction", &pgconn.PgError{Code: "57014"})
	assert.NotErrorIs(t, err, ErrConstraintViolation)
	var serr *StorageError
	assert.ErrorAs(t, err, &serr)

	assert.NoError(t, wrapErr("noop", nil))
}

func TestStorageErrorKeepsCause(t *testing.T) {
	err := wrapErr("list questions", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "list questions: context deadline exceeded", err.Error())
}

func TestQuestionRepository_ListSurfacesStorageError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM questions")).
		WillReturnError(errors.New("disk I/O error"))

	repo := NewQuestionRepository(conn, query.SQLite)
	_, _, err = repo.List(context.Background(), QuestionFilter{}, query.NewPage(1, 10))

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list questions", serr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_BatchInsertRollsBack(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	rows := make([]QuestionRow, insertChunk+1)
	for i := range rows {
		rows[i] = singleSelect("q")
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).WillReturnResult(sqlmock.NewResult(0, insertChunk))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	repo := NewQuestionRepository(conn, query.SQLite)
	n, err := repo.BatchInsert(context.Background(), rows)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_StatisticsStorageError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), AVG\\(result\\)").
		WithArgs("high", "medium", "low").
		WillReturnError(errors.New("no such table: history"))

	repo := NewHistoryRepository(conn, query.SQLite)
	_, err = repo.Statistics(context.Background())

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepository_PostgresPlaceholders(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE history SET tactics = $1 WHERE id = $2 AND tactics IS NULL")).
		WithArgs("hold compound", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewHistoryRepository(conn, query.Postgres)
	ok, err := repo.UpdateTactics(context.Background(), 9, "hold compound")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
