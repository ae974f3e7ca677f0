package jobs

import (
	"context"
	"time"

	"github.com/quantumstock/backend/internal/ingest"
	"github.com/quantumstock/backend/pkg/logger"
)

// DailyIngest pulls the latest trading day's bars every evening after
// the provider has published them.
type DailyIngest struct {
	driver   *ingest.Driver
	schedule string
	logger   *logger.Logger
}

// NewDailyIngest creates the nightly ingestion job. An empty schedule
// falls back to 17:30 on weekdays.
func NewDailyIngest(driver *ingest.Driver, schedule string, log *logger.Logger) *DailyIngest {
	if schedule == "" {
		schedule = "0 30 17 * * MON-FRI"
	}
	return &DailyIngest{
		driver:   driver,
		schedule: schedule,
		logger:   log.WithField("job", ingest.TaskName),
	}
}

func (j *DailyIngest) Name() string           { return ingest.TaskName }
func (j *DailyIngest) Schedule() string       { return j.schedule }
func (j *DailyIngest) LockTTL() time.Duration { return 2 * time.Hour }

// Run ingests today only. Non-trading days fetch an empty batch and
// finish immediately; backfills are operator-driven via the CLI.
func (j *DailyIngest) Run(ctx context.Context) error {
	today := time.Now().Truncate(24 * time.Hour)

	result, err := j.driver.Run(ctx, today, today)
	if err != nil {
		return err
	}

	if !result.HasData {
		j.logger.Info("No bars published today, nothing ingested")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"written":  result.TotalWritten,
		"updated":  result.TotalUpdated,
		"inserted": result.TotalInserted,
	}).Info("Daily ingestion finished")
	return nil
}
