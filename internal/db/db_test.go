package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:data/app.db?"+sqlitePragmas, sqliteDSN("data/app.db"))
	assert.Equal(t, "file:x.db?cache=shared&"+sqlitePragmas, sqliteDSN("file:x.db?cache=shared"))
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(1)", sqliteDSN("file:x.db?_pragma=foreign_keys(1)"))
}

func TestSqliteDir(t *testing.T) {
	assert.Equal(t, "data", sqliteDir("data/history.db"))
	assert.Equal(t, "/var/lib/app", sqliteDir("file:/var/lib/app/x.db?cache=shared"))
	assert.Empty(t, sqliteDir("history.db"))
	assert.Empty(t, sqliteDir(":memory:"))
	assert.Empty(t, sqliteDir("file::memory:?cache=shared"))
	assert.Empty(t, sqliteDir("file:shared.db?mode=memory&cache=shared"))
}

func TestOpenCreatesSqliteDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "history.db")
	conn, _, err := Open(ctx, Config{Driver: "sqlite", DSN: path, AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	assert.FileExists(t, path)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestOpenMigratesSqlite(t *testing.T) {
	ctx := context.Background()
	conn, dialect, err := Open(ctx, Config{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "app.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, query.SQLite, dialect)

	for _, table := range []string{"questions", "history", "advisories"} {
		var n int
		err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	m, err := NewMigrator(conn, dialect)
	require.NoError(t, err)
	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 3)
	for _, st := range status {
		assert.Equal(t, goose.StateApplied, st.State)
	}
}

func TestLegacyAdviceRowsMoveToAdvisories(t *testing.T) {
	ctx := context.Background()
	conn, _, err := Open(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "legacy.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	m, err := NewMigrator(conn, query.SQLite)
	require.NoError(t, err)
	_, err = m.UpTo(ctx, 2)
	require.NoError(t, err)

	insert := `INSERT INTO history (sumpeople, sumkill, sumfall, sumdist_ride, sumdist_walk, teamsize,
		survival_time, damage, assist, result, confidence, tactics) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = conn.ExecContext(ctx, insert, 90, 3, 1, 1200, 2400, 4, 1500, 420, 2, 0.82, "high", nil)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, insert, 50, 0, 0, 0, 0, 1, 0, 0, 0, 0.0, "AI建议", "rotate early, hold ridgelines")
	require.NoError(t, err)

	_, err = m.Up(ctx)
	require.NoError(t, err)

	var historyRows int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&historyRows))
	assert.Equal(t, 1, historyRows)

	var content string
	var createdAt int64
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT content, created_at FROM advisories").Scan(&content, &createdAt))
	assert.Equal(t, "rotate early, hold ridgelines", content)
	assert.Positive(t, createdAt)
}

func TestAdvisoriesDownRestoresLegacyRows(t *testing.T) {
	ctx := context.Background()
	conn, _, err := Open(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "down.db"), AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.ExecContext(ctx, "INSERT INTO advisories (content, created_at) VALUES (?, ?), (?, ?)",
		"play the edge of the zone", 1_700_000_000, "take fights early", 1_700_000_100)
	require.NoError(t, err)

	m, err := NewMigrator(conn, query.SQLite)
	require.NoError(t, err)
	_, err = m.Down(ctx)
	require.NoError(t, err)

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	rows, err := conn.QueryContext(ctx, "SELECT sumpeople, teamsize, confidence, tactics FROM history ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()
	var tactics []string
	for rows.Next() {
		var people, team int
		var confidence, text string
		require.NoError(t, rows.Scan(&people, &team, &confidence, &text))
		assert.Equal(t, 50, people)
		assert.Equal(t, 1, team)
		assert.Equal(t, "AI建议", confidence)
		tactics = append(tactics, text)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"play the edge of the zone", "take fights early"}, tactics)

	_, err = m.Up(ctx)
	require.NoError(t, err)
	var moved int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM advisories").Scan(&moved))
	assert.Equal(t, 2, moved)
}
