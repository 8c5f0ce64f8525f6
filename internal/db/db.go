package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

// Config describes the database a process works against.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	AutoMigrate  bool
}

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Open connects to the configured database, verifies it with a ping and
// applies pending migrations when AutoMigrate is set.
func Open(ctx context.Context, cfg Config) (*sql.DB, query.Dialect, error) {
	dialect, err := query.DialectFor(cfg.Driver)
	if err != nil {
		return nil, 0, err
	}

	driverName, dsn := "pgx", cfg.DSN
	if dialect == query.SQLite {
		driverName, dsn = "sqlite", sqliteDSN(cfg.DSN)
		if dir := sqliteDir(cfg.DSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, 0, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", dialect, err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, 0, fmt.Errorf("ping %s: %w", dialect, err)
	}

	if cfg.AutoMigrate {
		m, err := NewMigrator(conn, dialect)
		if err != nil {
			conn.Close()
			return nil, 0, err
		}
		if _, err := m.Up(ctx); err != nil {
			conn.Close()
			return nil, 0, err
		}
	}
	return conn, dialect, nil
}

// sqliteDSN turns a bare path into a file URI carrying the pragmas every
// connection needs. DSNs that already set pragmas are left alone.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqlitePragmas
}

// sqliteDir returns the directory holding a file-backed database, or "" for
// in-memory databases and paths in the working directory.
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return ""
		}
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
