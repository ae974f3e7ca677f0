package scheduler

import (
	"context"
	"time"
)

// Job is one schedulable pipeline invocation.
type Job interface {
	// Name is the logical task type; it keys the run lock and the task log.
	Name() string

	// Run executes the job once.
	Run(ctx context.Context) error

	// Schedule is the cron expression, e.g. "0 30 17 * * MON-FRI" or
	// "@daily" (six-field, with seconds).
	Schedule() string

	// LockTTL bounds how long a crashed run may keep the task locked.
	LockTTL() time.Duration
}

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit caps per-job in-memory history.
const historyLimit = 100

// JobHistory keeps a bounded window of recent executions.
type JobHistory struct {
	Results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns the newest n results, oldest first.
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// SuccessRate is the fraction of executed (non-skipped) runs that
// succeeded, 0.0 when nothing has executed yet.
func (h *JobHistory) SuccessRate() float64 {
	executed, succeeded := 0, 0
	for _, r := range h.Results {
		if r.Skipped {
			continue
		}
		executed++
		if r.Success {
			succeeded++
		}
	}
	if executed == 0 {
		return 0.0
	}
	return float64(succeeded) / float64(executed)
}
