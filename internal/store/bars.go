package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// Statically declared field list for the bars table; the first two
// columns are the primary key.
var (
	barColumns = []string{
		"instrument", "trade_date",
		"open", "high", "low", "close", "prev_close",
		"change_amt", "change_pct", "volume", "turnover",
	}
	barKeyColumns = barColumns[:2]
)

// BarRepository persists and loads daily bars.
type BarRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewBarRepository creates a new bar repository.
func NewBarRepository(pool *pgxpool.Pool, log *logger.Logger) *BarRepository {
	return &BarRepository{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
}

// UpsertBatch durably persists one day's batch with insert-or-update
// semantics and reports (total, updated); inserted is total - updated.
//
// The storage engine's upsert result does not reliably distinguish
// inserts from updates across deployment targets, so each chunk's update
// count is taken from a key pre-check that runs inside the same
// transaction as the upsert. The whole batch commits atomically: any
// chunk failing rolls back everything and the batch reports zero writes.
func (r *BarRepository) UpsertBatch(ctx context.Context, bars []contracts.Bar) (int, int, error) {
	if len(bars) == 0 {
		return 0, 0, nil
	}

	total := len(bars)
	updated := 0

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return total, 0, fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range chunkBounds(total) {
		chunk := bars[b[0]:b[1]]

		keyArgs := make([]interface{}, 0, len(chunk)*len(barKeyColumns))
		for i := range chunk {
			keyArgs = append(keyArgs, chunk[i].Instrument, chunk[i].TradeDate)
		}

		var chunkUpdated int
		countSQL := buildKeyCount("bars", barKeyColumns, len(chunk))
		if err := tx.QueryRow(ctx, countSQL, keyArgs...).Scan(&chunkUpdated); err != nil {
			return total, 0, fmt.Errorf("count existing keys: %w", err)
		}

		if chunkUpdated < 0 || chunkUpdated > len(chunk) {
			return total, 0, fmt.Errorf("chunk of %d reported %d existing keys: %w",
				len(chunk), chunkUpdated, contracts.ErrCountInvariant)
		}

		args := make([]interface{}, 0, len(chunk)*len(barColumns))
		for i := range chunk {
			args = append(args,
				chunk[i].Instrument, chunk[i].TradeDate,
				chunk[i].Open, chunk[i].High, chunk[i].Low, chunk[i].Close, chunk[i].PrevClose,
				chunk[i].ChangeAmt, chunk[i].ChangePct, chunk[i].Volume, chunk[i].Turnover,
			)
		}

		upsertSQL := buildUpsert("bars", barColumns, barKeyColumns, len(chunk))
		if _, err := tx.Exec(ctx, upsertSQL, args...); err != nil {
			return total, 0, fmt.Errorf("upsert chunk: %w", err)
		}

		updated += chunkUpdated
	}

	if err := tx.Commit(ctx); err != nil {
		return total, 0, fmt.Errorf("commit batch: %w", err)
	}

	inserted := total - updated
	if total != inserted+updated || updated > total {
		// The write has already committed; only the success reporting is
		// aborted. This is a counting logic bug, not a storage failure.
		r.logger.WithFields(map[string]interface{}{
			"total":    total,
			"updated":  updated,
			"inserted": inserted,
		}).Error("Batch count invariant violated")
		return total, updated, contracts.ErrCountInvariant
	}

	return total, updated, nil
}

// LoadRange retrieves every bar inside the closed date window, ordered by
// (instrument, trade_date) ascending. The ordering is imposed here; the
// per-instrument lag logic depends on it and must not trust storage order.
func (r *BarRepository) LoadRange(ctx context.Context, start, end time.Time) ([]contracts.Bar, error) {
	query := `
		SELECT instrument, trade_date, open, high, low, close, prev_close,
		       change_amt, change_pct, volume, turnover
		FROM bars
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY instrument ASC, trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bar range: %w", err)
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(
			&b.Instrument, &b.TradeDate, &b.Open, &b.High, &b.Low, &b.Close, &b.PrevClose,
			&b.ChangeAmt, &b.ChangePct, &b.Volume, &b.Turnover,
		); err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// CountByDate reports how many bars are stored for one trade date.
func (r *BarRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM bars WHERE trade_date = $1", date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bars by date: %w", err)
	}
	return count, nil
}
