package repository

import (
	"context"
	"database/sql"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

const (
	insertChunk = 200
	deleteChunk = 500
)

type rowScanner interface {
	Scan(dest ...any) error
}

// listPage runs the count and then, when anything matched, the page read.
func listPage[T any](ctx context.Context, db *sql.DB, op string, sel *query.Select, columns []string, page query.Page, scan func(rowScanner) (T, error)) ([]T, int64, error) {
	countSQL, countArgs, err := sel.Count()
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	var total int64
	if err := db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	stmt, args, err := sel.Page(columns, page)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	items, err := queryAll(ctx, db, op, stmt, args, scan)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, op, stmt string, args []any, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}

// deleteByIDs removes every listed id inside one transaction and reports how
// many rows actually existed.
func deleteByIDs(ctx context.Context, db *sql.DB, dialect query.Dialect, op, table string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr(op, err)
	}
	defer tx.Rollback()

	var deleted int64
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))
		chunk := ids[start:end]
		stmt, err := dialect.DeleteIn(table, "id", len(chunk))
		if err != nil {
			return 0, wrapErr(op, err)
		}
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, wrapErr(op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, wrapErr(op, err)
		}
		deleted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr(op, err)
	}
	return deleted, nil
}

// insertChunks writes rows with multi-row INSERTs in one transaction. Either
// every row lands or none does.
func insertChunks(ctx context.Context, db *sql.DB, dialect query.Dialect, op, table string, columns []string, n int, values func(i int) []any) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr(op, err)
	}
	defer tx.Rollback()

	var inserted int64
	for start := 0; start < n; start += insertChunk {
		end := min(start+insertChunk, n)
		stmt, err := dialect.InsertRows(table, columns, end-start)
		if err != nil {
			return 0, wrapErr(op, err)
		}
		args := make([]any, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			args = append(args, values(i)...)
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, wrapErr(op, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, wrapErr(op, err)
		}
		inserted += affected
	}
	if err := tx.Commit(); err != nil {
		return 0, wrapErr(op, err)
	}
	return inserted, nil
}
