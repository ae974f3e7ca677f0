package jobs

import (
	"context"
	"time"

	"github.com/quantumstock/backend/internal/screen"
	"github.com/quantumstock/backend/pkg/logger"
)

// screenWindowDays is how far back the nightly screening looks. The
// deepest lag needs five rows per instrument; a few calendar weeks of
// history covers that through any holiday cluster.
const screenWindowDays = 30

// DailyScreen runs the screening rule over the recent window every
// evening, after ingestion has had time to land.
type DailyScreen struct {
	runner   *screen.Runner
	schedule string
	note     string
	logger   *logger.Logger
}

// NewDailyScreen creates the nightly screening job. An empty schedule
// falls back to 18:30 on weekdays.
func NewDailyScreen(runner *screen.Runner, schedule, note string, log *logger.Logger) *DailyScreen {
	if schedule == "" {
		schedule = "0 30 18 * * MON-FRI"
	}
	if note == "" {
		note = "auto"
	}
	return &DailyScreen{
		runner:   runner,
		schedule: schedule,
		note:     note,
		logger:   log.WithField("job", screen.TaskName),
	}
}

func (j *DailyScreen) Name() string           { return screen.TaskName }
func (j *DailyScreen) Schedule() string       { return j.schedule }
func (j *DailyScreen) LockTTL() time.Duration { return time.Hour }

func (j *DailyScreen) Run(ctx context.Context) error {
	end := time.Now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -screenWindowDays)

	runID, hits, err := j.runner.Run(ctx, start, end, j.note, screen.DefaultLagOffset)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"hits":   hits,
	}).Info("Daily screening finished")
	return nil
}
