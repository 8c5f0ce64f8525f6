package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/223nobody/GameAnalysis/internal/db/query"
)

func TestAdvisoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAdvisoryRepository(openTestDB(t), query.SQLite)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	first, err := repo.Insert(ctx, "play the edge of the zone")
	require.NoError(t, err)
	second, err := repo.Insert(ctx, "avoid hot drops")
	require.NoError(t, err)

	rows, total, err := repo.List(ctx, query.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, second, rows[0].ID)
	assert.Equal(t, fixed, rows[1].CreatedAt)

	n, err := repo.DeleteByIDs(ctx, []int64{first})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
