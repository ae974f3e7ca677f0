package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// Statically declared field list for the selections table; the first
// three columns are the primary key. The favorite/observation columns are
// deliberately absent: screening never touches them, so re-running a
// run_id preserves user toggles.
var (
	selectionColumns = []string{
		"run_id", "instrument", "trade_date",
		"open", "high", "low", "close", "prev_close",
		"change_amt", "change_pct", "volume", "turnover",
		"buy_date", "gold_date",
	}
	selectionKeyColumns = selectionColumns[:3]
)

// SelectionRepository persists screening results and their lifecycle.
type SelectionRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewSelectionRepository creates a new selection repository.
func NewSelectionRepository(pool *pgxpool.Pool, log *logger.Logger) *SelectionRepository {
	return &SelectionRepository{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
}

// SaveRun upserts one screening run's full result set in a single
// transaction: a mid-batch failure rolls back every chunk and the run
// reports as failed, never as a partial success.
func (r *SelectionRepository) SaveRun(ctx context.Context, selections []contracts.Selection) error {
	if len(selections) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range chunkBounds(len(selections)) {
		chunk := selections[b[0]:b[1]]

		args := make([]interface{}, 0, len(chunk)*len(selectionColumns))
		for i := range chunk {
			s := &chunk[i]
			args = append(args,
				s.RunID, s.Instrument, s.TradeDate,
				s.Open, s.High, s.Low, s.Close, s.PrevClose,
				s.ChangeAmt, s.ChangePct, s.Volume, s.Turnover,
				s.BuyDate, s.GoldDate,
			)
		}

		upsertSQL := buildUpsert("selections", selectionColumns, selectionKeyColumns, len(chunk))
		if _, err := tx.Exec(ctx, upsertSQL, args...); err != nil {
			return fmt.Errorf("upsert selection chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id": selections[0].RunID,
		"count":  len(selections),
	}).Info("Saved screening run")
	return nil
}

// ListByRunID returns one run's selections ordered by (instrument, date).
func (r *SelectionRepository) ListByRunID(ctx context.Context, runID string) ([]contracts.Selection, error) {
	query := `
		SELECT run_id, instrument, trade_date, open, high, low, close, prev_close,
		       change_amt, change_pct, volume, turnover, buy_date, gold_date,
		       is_favorite, favorite_at, is_observation, observation_at
		FROM selections
		WHERE run_id = $1
		ORDER BY instrument ASC, trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var out []contracts.Selection
	for rows.Next() {
		var s contracts.Selection
		if err := rows.Scan(
			&s.RunID, &s.Instrument, &s.TradeDate, &s.Open, &s.High, &s.Low, &s.Close, &s.PrevClose,
			&s.ChangeAmt, &s.ChangePct, &s.Volume, &s.Turnover, &s.BuyDate, &s.GoldDate,
			&s.IsFavorite, &s.FavoriteAt, &s.IsObservation, &s.ObservationAt,
		); err != nil {
			return nil, fmt.Errorf("scan selection row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetFavorite toggles the favorite flag for one selection. User action,
// independent of the screening engine.
func (r *SelectionRepository) SetFavorite(ctx context.Context, runID, instrument string, tradeDate time.Time, favorite bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE selections
		SET is_favorite = $4,
		    favorite_at = CASE WHEN $4 THEN NOW() ELSE NULL END
		WHERE run_id = $1 AND instrument = $2 AND trade_date = $3
	`, runID, instrument, tradeDate, favorite)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("selection (%s, %s, %s) not found",
			runID, instrument, tradeDate.Format("2006-01-02"))
	}
	return nil
}

// SetObservation toggles the observation flag for one selection.
func (r *SelectionRepository) SetObservation(ctx context.Context, runID, instrument string, tradeDate time.Time, observation bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE selections
		SET is_observation = $4,
		    observation_at = CASE WHEN $4 THEN NOW() ELSE NULL END
		WHERE run_id = $1 AND instrument = $2 AND trade_date = $3
	`, runID, instrument, tradeDate, observation)
	if err != nil {
		return fmt.Errorf("set observation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("selection (%s, %s, %s) not found",
			runID, instrument, tradeDate.Format("2006-01-02"))
	}
	return nil
}

// PurgeByRunID deletes every selection of one run. Operator action; the
// screening engine never deletes.
func (r *SelectionRepository) PurgeByRunID(ctx context.Context, runID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM selections WHERE run_id = $1", runID)
	if err != nil {
		return 0, fmt.Errorf("purge by run_id: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeByWindow deletes selections created inside the closed timestamp
// window.
func (r *SelectionRepository) PurgeByWindow(ctx context.Context, from, to time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM selections WHERE created_at BETWEEN $1 AND $2", from, to)
	if err != nil {
		return 0, fmt.Errorf("purge by window: %w", err)
	}
	return tag.RowsAffected(), nil
}
