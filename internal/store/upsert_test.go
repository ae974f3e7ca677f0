package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsert(t *testing.T) {
	sql := buildUpsert("bars",
		[]string{"instrument", "trade_date", "close"},
		[]string{"instrument", "trade_date"}, 2)

	assert.Equal(t,
		"INSERT INTO bars (instrument, trade_date, close) "+
			"VALUES ($1, $2, $3), ($4, $5, $6) "+
			"ON CONFLICT (instrument, trade_date) DO UPDATE SET close = EXCLUDED.close",
		sql)
}

func TestBuildUpsertKeyColumnsNeverUpdated(t *testing.T) {
	sql := buildUpsert("selections", selectionColumns, selectionKeyColumns, 1)

	_, setClause, ok := strings.Cut(sql, " DO UPDATE SET ")
	require.True(t, ok)

	for _, key := range selectionKeyColumns {
		assert.NotContains(t, setClause, key+" = EXCLUDED.")
	}
	assert.Contains(t, setClause, "buy_date = EXCLUDED.buy_date")
	assert.Contains(t, setClause, "gold_date = EXCLUDED.gold_date")
}

func TestBuildUpsertSelectionsPreservesFlags(t *testing.T) {
	// The screening engine must never touch user toggles: the column list
	// simply does not include them, so conflicts leave them intact.
	sql := buildUpsert("selections", selectionColumns, selectionKeyColumns, 1)

	assert.NotContains(t, sql, "is_favorite")
	assert.NotContains(t, sql, "favorite_at")
	assert.NotContains(t, sql, "is_observation")
	assert.NotContains(t, sql, "observation_at")
}

func TestBuildUpsertPlaceholderCount(t *testing.T) {
	sql := buildUpsert("bars", barColumns, barKeyColumns, 3)
	assert.Equal(t, 3*len(barColumns), strings.Count(sql, "$"))
	assert.Contains(t, sql, "$33")
	assert.NotContains(t, sql, "$34")
}

func TestBuildKeyCount(t *testing.T) {
	sql := buildKeyCount("bars", []string{"instrument", "trade_date"}, 2)

	assert.Equal(t,
		"SELECT COUNT(*) FROM bars WHERE (instrument, trade_date) "+
			"IN (($1, $2), ($3, $4))",
		sql)
}

func TestChunkBounds(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want [][2]int
	}{
		{"empty", 0, [][2]int{}},
		{"single row", 1, [][2]int{{0, 1}}},
		{"under one chunk", 999, [][2]int{{0, 999}}},
		{"exactly one chunk", 1000, [][2]int{{0, 1000}}},
		{"one row over", 1001, [][2]int{{0, 1000}, {1000, 1001}}},
		{"several chunks", 2500, [][2]int{{0, 1000}, {1000, 2000}, {2000, 2500}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkBounds(tt.n))
		})
	}
}

func TestChunkBoundsCoverAllRows(t *testing.T) {
	for _, n := range []int{1, 42, 1000, 1001, 5003} {
		bounds := chunkBounds(n)

		covered := 0
		prevEnd := 0
		for _, b := range bounds {
			require.Equal(t, prevEnd, b[0])
			require.Greater(t, b[1], b[0])
			require.LessOrEqual(t, b[1]-b[0], upsertChunkSize)
			covered += b[1] - b[0]
			prevEnd = b[1]
		}
		assert.Equal(t, n, covered)
	}
}

func TestTruncateMessage(t *testing.T) {
	assert.Equal(t, "short", truncateMessage("short"))

	exact := strings.Repeat("x", maxTaskLogMessage)
	assert.Equal(t, exact, truncateMessage(exact))

	long := strings.Repeat("x", maxTaskLogMessage+100)
	got := truncateMessage(long)
	assert.Len(t, got, maxTaskLogMessage)
	assert.True(t, strings.HasSuffix(got, "..."))
}
