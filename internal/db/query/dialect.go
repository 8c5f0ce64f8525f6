package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects the placeholder syntax of the target database.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// DialectFor maps a configured driver name onto a Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkIdent rejects anything that is not a plain lower-case SQL identifier.
// Table and column names are the only text ever spliced into a statement.
func checkIdent(names ...string) error {
	for _, name := range names {
		if !identPattern.MatchString(name) {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	return nil
}

// InsertReturningID builds a single-row insert that yields the new identity.
func (d Dialect) InsertReturningID(table string, columns []string) (string, error) {
	stmt, err := d.InsertRows(table, columns, 1)
	if err != nil {
		return "", err
	}
	return stmt + " RETURNING id", nil
}

// InsertRows builds one multi-row INSERT for n rows of the given columns.
func (d Dialect) InsertRows(table string, columns []string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("insert into %s: no rows", table)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("insert into %s: no columns", table)
	}
	if err := checkIdent(append([]string{table}, columns...)...); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	arg := 0
	for row := 0; row < n; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for col := range columns {
			if col > 0 {
				b.WriteString(", ")
			}
			arg++
			b.WriteString(d.Placeholder(arg))
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

// DeleteIn builds "DELETE FROM table WHERE column IN (...)" for n bound values.
func (d Dialect) DeleteIn(table, column string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("delete from %s: empty id set", table)
	}
	if err := checkIdent(table, column); err != nil {
		return "", err
	}
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", table, column, strings.Join(marks, ", ")), nil
}
