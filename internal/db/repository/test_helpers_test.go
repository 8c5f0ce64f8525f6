package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/db"
	"github.com/223nobody/GameAnalysis/internal/db/query"
)

// openTestDB returns a migrated SQLite database in a temporary file.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, dialect, err := db.Open(context.Background(), db.Config{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)
	require.Equal(t, query.SQLite, dialect)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func singleSelect(title string) QuestionRow {
	return QuestionRow{
		Title:    title,
		Type:     1,
		Language: "go",
		Answers:  TextList{"A: one", "B: two", "C: three", "D: four"},
		Rights:   TextList{"B"},
	}
}

func validPrediction() PredictionRow {
	return PredictionRow{
		SumPeople:    90,
		SumKill:      4,
		SumFall:      2,
		SumDistRide:  1500,
		SumDistWalk:  2300,
		TeamSize:     4,
		SurvivalTime: 1600,
		Damage:       450,
		Assist:       1,
		Result:       0.75,
		Confidence:   "high",
	}
}
