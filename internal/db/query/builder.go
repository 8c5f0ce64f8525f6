package query

import (
	"fmt"
	"strings"
)

// where accumulates AND-ed predicates. Every value is appended to args and
// referenced through a placeholder; it is never written into the SQL text.
type where struct {
	dialect Dialect
	conds   []string
	args    []any
	err     error
}

func (w *where) bind(v any) string {
	w.args = append(w.args, v)
	return w.dialect.Placeholder(len(w.args))
}

func (w *where) eq(column string, value any) {
	if err := checkIdent(column); err != nil {
		w.fail(err)
		return
	}
	w.conds = append(w.conds, column+" = "+w.bind(value))
}

func (w *where) isNull(column string) {
	if err := checkIdent(column); err != nil {
		w.fail(err)
		return
	}
	w.conds = append(w.conds, column+" IS NULL")
}

func (w *where) contains(column, substr string) {
	if substr == "" {
		return
	}
	if err := checkIdent(column); err != nil {
		w.fail(err)
		return
	}
	w.conds = append(w.conds, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, column, w.bind("%"+escapeLike(substr)+"%")))
}

func (w *where) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Select composes a filtered read over one table, always ordered by the
// identity column descending.
type Select struct {
	table   string
	orderBy string
	w       where
}

// From starts a Select against table.
func (d Dialect) From(table string) *Select {
	s := &Select{table: table, orderBy: "id", w: where{dialect: d}}
	if err := checkIdent(table); err != nil {
		s.w.fail(err)
	}
	return s
}

// Eq adds an exact-match predicate.
func (s *Select) Eq(column string, value any) *Select {
	s.w.eq(column, value)
	return s
}

// Contains adds a substring predicate. An empty substring adds nothing.
func (s *Select) Contains(column, substr string) *Select {
	s.w.contains(column, substr)
	return s
}

// Count returns the unwindowed row count statement for the current filters.
func (s *Select) Count() (string, []any, error) {
	if s.w.err != nil {
		return "", nil, s.w.err
	}
	return "SELECT COUNT(*) FROM " + s.table + s.w.clause(), cloneArgs(s.w.args), nil
}

// Page returns the statement for one page of rows.
func (s *Select) Page(columns []string, page Page) (string, []any, error) {
	page = NewPage(page.Number, page.Size)
	return s.limit(columns, page.Size, page.Offset())
}

// Window returns the statement for a raw limit/offset read.
func (s *Select) Window(columns []string, win Window) (string, []any, error) {
	win = NewWindow(&win.Limit, &win.Offset)
	return s.limit(columns, win.Limit, win.Offset)
}

func (s *Select) limit(columns []string, limit, offset int) (string, []any, error) {
	if s.w.err != nil {
		return "", nil, s.w.err
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: no columns", s.table)
	}
	if err := checkIdent(columns...); err != nil {
		return "", nil, err
	}
	args := cloneArgs(s.w.args)
	args = append(args, limit, offset)
	n := len(args)
	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s DESC LIMIT %s OFFSET %s",
		strings.Join(columns, ", "), s.table, s.w.clause(), s.orderBy,
		s.w.dialect.Placeholder(n-1), s.w.dialect.Placeholder(n))
	return stmt, args, nil
}

// Update composes "UPDATE table SET column = value WHERE ...".
type Update struct {
	table  string
	column string
	w      where
}

// Update starts an Update that assigns value to column. The assignment is the
// first bound argument.
func (d Dialect) Update(table, column string, value any) *Update {
	u := &Update{table: table, column: column, w: where{dialect: d}}
	if err := checkIdent(table, column); err != nil {
		u.w.fail(err)
	}
	u.w.bind(value)
	return u
}

// Eq adds an exact-match predicate.
func (u *Update) Eq(column string, value any) *Update {
	u.w.eq(column, value)
	return u
}

// IsNull restricts the update to rows where column has no value yet.
func (u *Update) IsNull(column string) *Update {
	u.w.isNull(column)
	return u
}

// Build returns the statement and its arguments.
func (u *Update) Build() (string, []any, error) {
	if u.w.err != nil {
		return "", nil, u.w.err
	}
	if len(u.w.conds) == 0 {
		return "", nil, fmt.Errorf("update %s: refusing unconditional update", u.table)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = %s%s", u.table, u.column, u.w.dialect.Placeholder(1), u.w.clause())
	return stmt, cloneArgs(u.w.args), nil
}

func cloneArgs(args []any) []any {
	out := make([]any, len(args), len(args)+2)
	copy(out, args)
	return out
}
