package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumstock/backend/internal/contracts"
	"github.com/quantumstock/backend/pkg/logger"
)

// maxTaskLogMessage caps a single task_log message; longer text is
// truncated with a marker so an oversized error report can never make
// the logging write itself fail.
const maxTaskLogMessage = 65535

// TaskLogRepository records pipeline run outcomes. Writes are
// fire-and-forget: a failed log write is reported to the process logger
// and swallowed, it never fails the task being logged.
type TaskLogRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewTaskLogRepository creates a new task log repository.
func NewTaskLogRepository(pool *pgxpool.Pool, log *logger.Logger) *TaskLogRepository {
	return &TaskLogRepository{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
}

// LogRun appends one task outcome row.
func (r *TaskLogRepository) LogRun(ctx context.Context, taskName, status, message string) {
	message = truncateMessage(message)

	_, err := r.pool.Exec(ctx,
		"INSERT INTO task_log (task_name, status, message) VALUES ($1, $2, $3)",
		taskName, status, message)
	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"task_name": taskName,
			"status":    status,
		}).Error("Failed to write task log")
	}
}

// Recent returns the newest task log entries, newest first.
func (r *TaskLogRepository) Recent(ctx context.Context, limit int) ([]contracts.TaskLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, task_name, ts, status, message
		FROM task_log
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent task log: %w", err)
	}
	defer rows.Close()

	var out []contracts.TaskLogEntry
	for rows.Next() {
		var e contracts.TaskLogEntry
		if err := rows.Scan(&e.ID, &e.TaskName, &e.Ts, &e.Status, &e.Message); err != nil {
			return nil, fmt.Errorf("scan task log row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func truncateMessage(message string) string {
	if len(message) <= maxTaskLogMessage {
		return message
	}
	return message[:maxTaskLogMessage-3] + "..."
}
