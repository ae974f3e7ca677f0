package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// TaskName is the logical task type for daily bar ingestion, used for the
// task log and the invoker's run lock.
const TaskName = "daily_bar_ingest"

// DailyFetcher is the fetch side of the pipeline.
type DailyFetcher interface {
	FetchDay(ctx context.Context, date time.Time) ([]contracts.Bar, error)
}

// BarWriter persists one day's batch with upsert semantics and reports
// accurate (total, updated) counts.
type BarWriter interface {
	UpsertBatch(ctx context.Context, bars []contracts.Bar) (total, updated int, err error)
}

// YearStats is the per-year ingestion breakdown.
type YearStats struct {
	Written  int `json:"written"`
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
}

// Result aggregates a whole date-range run.
type Result struct {
	// HasData reports whether any day in the range produced bars. All
	// days being holidays/weekends is a valid, non-error outcome.
	HasData bool

	TotalSeen     int
	TotalWritten  int
	TotalUpdated  int
	TotalInserted int

	ByYear map[string]YearStats
}

// Driver walks a contiguous calendar date range, fetching and committing
// one day at a time. Memory is bounded to a single day's batch: a day's
// rows are dropped before the loop advances.
type Driver struct {
	fetcher DailyFetcher
	writer  BarWriter
	tasklog contracts.TaskLogger
	logger  *logger.Logger
}

// NewDriver creates a new ingestion driver.
func NewDriver(fetcher DailyFetcher, writer BarWriter, tasklog contracts.TaskLogger, log *logger.Logger) *Driver {
	return &Driver{
		fetcher: fetcher,
		writer:  writer,
		tasklog: tasklog,
		logger:  log.WithField("module", "ingest"),
	}
}

// Run ingests every calendar day from start to end inclusive. A write
// failure degrades that day's contribution to zero and the loop continues;
// only context cancellation (or an exhausted bounded retry policy) aborts
// the run.
func (d *Driver) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s",
			end.Format("20060102"), start.Format("20060102"))
	}

	d.tasklog.LogRun(ctx, TaskName, contracts.StatusRunning,
		fmt.Sprintf("ingesting %s - %s", start.Format("2006-01-02"), end.Format("2006-01-02")))

	result := &Result{ByYear: make(map[string]YearStats)}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		bars, err := d.fetcher.FetchDay(ctx, day)
		if err != nil {
			d.tasklog.LogRun(ctx, TaskName, contracts.StatusFail,
				fmt.Sprintf("aborted at %s: %v", day.Format("2006-01-02"), err))
			return result, fmt.Errorf("fetch %s: %w", day.Format("20060102"), err)
		}

		if len(bars) == 0 {
			continue
		}

		result.HasData = true
		result.TotalSeen += len(bars)

		total, updated, err := d.writer.UpsertBatch(ctx, bars)
		if err != nil {
			// The batch rolled back; this day contributes zero writes but
			// the range loop keeps going.
			d.logger.WithError(err).WithFields(map[string]interface{}{
				"trade_date": day.Format("2006-01-02"),
				"rows":       len(bars),
			}).Error("Day write failed, continuing")
			continue
		}

		inserted := total - updated
		result.TotalWritten += total
		result.TotalUpdated += updated
		result.TotalInserted += inserted

		year := day.Format("2006")
		ys := result.ByYear[year]
		ys.Written += total
		ys.Updated += updated
		ys.Inserted += inserted
		result.ByYear[year] = ys

		d.logger.WithFields(map[string]interface{}{
			"trade_date": day.Format("2006-01-02"),
			"total":      total,
			"updated":    updated,
			"inserted":   inserted,
		}).Info("Day committed")
	}

	d.tasklog.LogRun(ctx, TaskName, contracts.StatusSuccess, summarize(result))
	return result, nil
}

func summarize(r *Result) string {
	if !r.HasData {
		return "no trading days in range"
	}
	return fmt.Sprintf("seen %d rows, written %d, updated %d, inserted %d",
		r.TotalSeen, r.TotalWritten, r.TotalUpdated, r.TotalInserted)
}
