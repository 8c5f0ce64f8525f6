package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

const questionsTable = "questions"

var (
	questionInsertColumns = []string{"title", "type", "language", "answers", "rights"}
	questionColumns       = []string{"id", "title", "type", "language", "answers", "rights"}
)

// QuestionRow is one row of the questions table.
type QuestionRow struct {
	ID       int64
	Title    string
	Type     int
	Language string
	Answers  TextList
	Rights   TextList
}

func (q QuestionRow) values() []any {
	return []any{q.Title, q.Type, q.Language, q.Answers, q.Rights}
}

// QuestionFilter narrows a question listing. Zero values match everything.
type QuestionFilter struct {
	Type     *int
	Language string
	Search   string
}

// QuestionRepository persists question records.
type QuestionRepository struct {
	db      *sql.DB
	dialect query.Dialect
}

func NewQuestionRepository(db *sql.DB, dialect query.Dialect) *QuestionRepository {
	return &QuestionRepository{db: db, dialect: dialect}
}

// Insert stores one question and returns its id.
func (r *QuestionRepository) Insert(ctx context.Context, row QuestionRow) (int64, error) {
	stmt, err := r.dialect.InsertReturningID(questionsTable, questionInsertColumns)
	if err != nil {
		return 0, wrapErr("insert question", err)
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, stmt, row.values()...).Scan(&id); err != nil {
		return 0, wrapErr("insert question", err)
	}
	return id, nil
}

// BatchInsert stores every row or none of them.
func (r *QuestionRepository) BatchInsert(ctx context.Context, rows []QuestionRow) (int64, error) {
	return insertChunks(ctx, r.db, r.dialect, "batch insert questions", questionsTable, questionInsertColumns, len(rows),
		func(i int) []any { return rows[i].values() })
}

// DeleteByIDs removes the listed questions. Ids that do not exist are ignored.
func (r *QuestionRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	return deleteByIDs(ctx, r.db, r.dialect, "delete questions", questionsTable, ids)
}

// List returns one page of questions, newest first, with the total match count.
func (r *QuestionRepository) List(ctx context.Context, filter QuestionFilter, page query.Page) ([]QuestionRow, int64, error) {
	sel := r.dialect.From(questionsTable)
	if filter.Type != nil {
		sel.Eq("type", *filter.Type)
	}
	if filter.Language != "" {
		sel.Eq("language", filter.Language)
	}
	sel.Contains("title", filter.Search)
	return listPage(ctx, r.db, "list questions", sel, questionColumns, page, scanQuestion)
}

// Get loads one question. The bool is false when the id does not exist.
func (r *QuestionRepository) Get(ctx context.Context, id int64) (QuestionRow, bool, error) {
	stmt := "SELECT id, title, type, language, answers, rights FROM questions WHERE id = " + r.dialect.Placeholder(1)
	row, err := scanQuestion(r.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return QuestionRow{}, false, nil
	}
	if err != nil {
		return QuestionRow{}, false, wrapErr("get question", err)
	}
	return row, true, nil
}

func scanQuestion(s rowScanner) (QuestionRow, error) {
	var q QuestionRow
	err := s.Scan(&q.ID, &q.Title, &q.Type, &q.Language, &q.Answers, &q.Rights)
	return q, err
}
