package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// Integration tests run only when TEST_DATABASE_URL points at a
// disposable database.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, EnsureSchema(context.Background(), pool))

	ctx := context.Background()
	_, err = pool.Exec(ctx, "TRUNCATE bars, selections, task_log")
	require.NoError(t, err)

	return pool
}

func makeBars(n int, date time.Time) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		bars[i] = contracts.Bar{
			Instrument: fmt.Sprintf("%06d.SH", i),
			TradeDate:  date,
			Open:       10, High: 11, Low: 9, Close: 10.5,
			Volume: 100, Turnover: 1050,
		}
	}
	return bars
}

func TestUpsertBatchIdempotent(t *testing.T) {
	pool := testPool(t)
	repo := NewBarRepository(pool, logger.NewNop())
	ctx := context.Background()
	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	// Straddle the chunk boundary on purpose.
	bars := makeBars(1001, date)

	total, updated, err := repo.UpsertBatch(ctx, bars)
	require.NoError(t, err)
	assert.Equal(t, 1001, total)
	assert.Equal(t, 0, updated)

	// Second write of the same batch: every row is an update.
	bars[0].Close = 99
	total, updated, err = repo.UpsertBatch(ctx, bars)
	require.NoError(t, err)
	assert.Equal(t, 1001, total)
	assert.Equal(t, 1001, updated)

	count, err := repo.CountByDate(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, 1001, count)

	loaded, err := repo.LoadRange(ctx, date, date)
	require.NoError(t, err)
	require.Len(t, loaded, 1001)
	assert.Equal(t, 99.0, loaded[0].Close)
}

func TestUpsertBatchMixedInsertUpdate(t *testing.T) {
	pool := testPool(t)
	repo := NewBarRepository(pool, logger.NewNop())
	ctx := context.Background()
	date := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)

	_, _, err := repo.UpsertBatch(ctx, makeBars(3, date))
	require.NoError(t, err)

	total, updated, err := repo.UpsertBatch(ctx, makeBars(5, date))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, updated)
}

func TestSaveRunPreservesUserFlags(t *testing.T) {
	pool := testPool(t)
	repo := NewSelectionRepository(pool, logger.NewNop())
	ctx := context.Background()
	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	sel := contracts.Selection{
		RunID: "2025-06-20 6/9～6/16 it",
		Bar: contracts.Bar{
			Instrument: "600000.SH", TradeDate: date, Close: 12,
		},
		BuyDate:  date.AddDate(0, 0, 1),
		GoldDate: date.AddDate(0, 0, -5),
	}
	require.NoError(t, repo.SaveRun(ctx, []contracts.Selection{sel}))

	require.NoError(t, repo.SetFavorite(ctx, sel.RunID, sel.Instrument, date, true))

	// Re-running the same run_id must overwrite bar columns but keep the
	// favorite flag.
	sel.Close = 13
	require.NoError(t, repo.SaveRun(ctx, []contracts.Selection{sel}))

	rows, err := repo.ListByRunID(ctx, sel.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 13.0, rows[0].Close)
	assert.True(t, rows[0].IsFavorite)
	assert.NotNil(t, rows[0].FavoriteAt)
}

func TestPurgeByRunID(t *testing.T) {
	pool := testPool(t)
	repo := NewSelectionRepository(pool, logger.NewNop())
	ctx := context.Background()
	date := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

	for _, runID := range []string{"run-a", "run-b"} {
		require.NoError(t, repo.SaveRun(ctx, []contracts.Selection{{
			RunID: runID,
			Bar:   contracts.Bar{Instrument: "600000.SH", TradeDate: date},
		}}))
	}

	deleted, err := repo.PurgeByRunID(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.ListByRunID(ctx, "run-b")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestTaskLogRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewTaskLogRepository(pool, logger.NewNop())
	ctx := context.Background()

	repo.LogRun(ctx, "daily_bar_ingest", contracts.StatusRunning, "ingesting")
	repo.LogRun(ctx, "daily_bar_ingest", contracts.StatusSuccess, "done")

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, contracts.StatusSuccess, entries[0].Status)
	assert.Equal(t, "daily_bar_ingest", entries[0].TaskName)
}
