package contracts

import "time"

// Task log statuses. The task_log table is append-only: pipelines write
// entries but never read or mutate existing ones.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// TaskLogEntry is one append-only audit record.
type TaskLogEntry struct {
	ID       int64     `json:"id"`
	TaskName string    `json:"task_name"`
	Ts       time.Time `json:"ts"`
	Status   string    `json:"status"`
	Message  string    `json:"message"`
}
