package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

const advisoriesTable = "advisories"

// AdvisoryRow is one stored piece of generated advice.
type AdvisoryRow struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

// AdvisoryRepository persists free-standing advice that is not tied to a
// prediction record.
type AdvisoryRepository struct {
	db      *sql.DB
	dialect query.Dialect
	now     func() time.Time
}

func NewAdvisoryRepository(db *sql.DB, dialect query.Dialect) *AdvisoryRepository {
	return &AdvisoryRepository{db: db, dialect: dialect, now: time.Now}
}

// Insert stores advice text and returns its id.
func (r *AdvisoryRepository) Insert(ctx context.Context, content string) (int64, error) {
	stmt, err := r.dialect.InsertReturningID(advisoriesTable, []string{"content", "created_at"})
	if err != nil {
		return 0, wrapErr("insert advisory", err)
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, stmt, content, r.now().Unix()).Scan(&id); err != nil {
		return 0, wrapErr("insert advisory", err)
	}
	return id, nil
}

// List returns one page of advice, newest first.
func (r *AdvisoryRepository) List(ctx context.Context, page query.Page) ([]AdvisoryRow, int64, error) {
	return listPage(ctx, r.db, "list advisories", r.dialect.From(advisoriesTable),
		[]string{"id", "content", "created_at"}, page, scanAdvisory)
}

// DeleteByIDs removes the listed advice entries.
func (r *AdvisoryRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, r.dialect, "delete advisories", advisoriesTable, ids)
}

func scanAdvisory(s rowScanner) (AdvisoryRow, error) {
	var (
		a       AdvisoryRow
		created int64
	)
	if err := s.Scan(&a.ID, &a.Content, &created); err != nil {
		return a, err
	}
	a.CreatedAt = time.Unix(created, 0).UTC()
	return a, nil
}
