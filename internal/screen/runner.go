package screen

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// TaskName identifies screening runs in the task log.
const TaskName = "stock_screening"

// HistoryLoader supplies the bar window, ordered by (instrument, date).
type HistoryLoader interface {
	LoadRange(ctx context.Context, start, end time.Time) ([]contracts.Bar, error)
}

// SelectionSaver persists one run's full hit set atomically.
type SelectionSaver interface {
	SaveRun(ctx context.Context, selections []contracts.Selection) error
}

// Runner wires history loading, signal evaluation and selection
// persistence into one screening invocation.
type Runner struct {
	loader  HistoryLoader
	saver   SelectionSaver
	cal     contracts.Calendar
	taskLog contracts.TaskLogger
	logger  *logger.Logger
	now     func() time.Time
}

// NewRunner creates a screening runner.
func NewRunner(loader HistoryLoader, saver SelectionSaver, cal contracts.Calendar, taskLog contracts.TaskLogger, log *logger.Logger) *Runner {
	return &Runner{
		loader:  loader,
		saver:   saver,
		cal:     cal,
		taskLog: taskLog,
		logger:  log.WithField("module", "screen"),
		now:     time.Now,
	}
}

// Run screens the closed [start, end] window with lag offset d1 =
// lagOffset and persists the hits under a freshly built run_id. Returns
// the run_id and hit count. Failures roll the whole run back and log a
// single FAIL entry; no partial result is ever visible.
func (r *Runner) Run(ctx context.Context, start, end time.Time, note string, lagOffset int) (string, int, error) {
	if end.Before(start) {
		return "", 0, fmt.Errorf("invalid range: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	runID := buildRunID(r.now(), start, end, note)
	log := r.logger.WithField("run_id", runID)
	log.WithFields(map[string]interface{}{
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
		"lag":   lagOffset,
	}).Info("Starting screening run")

	r.taskLog.LogRun(ctx, TaskName, contracts.StatusRunning, fmt.Sprintf("run_id=%s", runID))

	bars, err := r.loader.LoadRange(ctx, start, end)
	if err != nil {
		err = fmt.Errorf("load bar history: %w", err)
		r.taskLog.LogRun(ctx, TaskName, contracts.StatusFail, fmt.Sprintf("run_id=%s error=%v", runID, err))
		return runID, 0, err
	}

	hits := NewEvaluator(r.cal, lagOffset).Evaluate(bars, runID)

	if err := r.saver.SaveRun(ctx, hits); err != nil {
		err = fmt.Errorf("save screening run: %w", err)
		r.taskLog.LogRun(ctx, TaskName, contracts.StatusFail, fmt.Sprintf("run_id=%s error=%v", runID, err))
		return runID, 0, err
	}

	r.taskLog.LogRun(ctx, TaskName, contracts.StatusSuccess,
		fmt.Sprintf("run_id=%s bars=%d hits=%d", runID, len(bars), len(hits)))
	log.WithFields(map[string]interface{}{
		"bars": len(bars),
		"hits": len(hits),
	}).Info("Screening run complete")

	return runID, len(hits), nil
}

// buildRunID renders "YYYY-MM-DD M/D～M/D note": the run date, the
// requested window with no leading zeros, and an optional free-text note.
func buildRunID(now, start, end time.Time, note string) string {
	id := fmt.Sprintf("%s %d/%d～%d/%d",
		now.Format("2006-01-02"),
		int(start.Month()), start.Day(),
		int(end.Month()), end.Day())
	if note != "" {
		id += " " + note
	}
	return id
}
