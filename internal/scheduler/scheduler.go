package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quantumstock/backend/pkg/logger"
	pkgredis "github.com/quantumstock/backend/pkg/redis"
)

// Scheduler triggers pipeline jobs on cron schedules. Every trigger
// takes the task's distributed run lock first: the pipelines themselves
// do not coordinate concurrent runs, so the scheduler is where
// "at most one run per task type" is enforced.
type Scheduler struct {
	cron    *cron.Cron
	lock    *pkgredis.RunLock
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex
}

// New creates a scheduler using the given run lock.
func New(lock *pkgredis.RunLock, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		lock:    lock,
		logger:  log.WithField("module", "scheduler"),
		jobs:    make(map[string]Job),
		history: make(map[string]*JobHistory),
	}
}

// AddJob registers a job under its cron schedule.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	}); err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")
	return nil
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs started by cron.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// TriggerNow runs a registered job immediately, off-schedule.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(job)
	return nil
}

func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()
	log := s.logger.WithField("job", name)

	ctx := context.Background()

	release, err := s.lock.Acquire(ctx, name, job.LockTTL())
	if errors.Is(err, pkgredis.ErrLocked) {
		log.Warn("Previous run still holds the task lock, skipping this trigger")
		s.record(JobResult{
			JobName: name, StartTime: start, EndTime: start, Skipped: true,
		})
		return
	}
	if err != nil {
		log.WithError(err).Error("Run lock acquisition failed")
		s.record(JobResult{
			JobName: name, StartTime: start, EndTime: start, Error: err.Error(),
		})
		return
	}
	defer release()

	log.Info("Job started")
	runErr := job.Run(ctx)

	end := time.Now()
	result := JobResult{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Success:   runErr == nil,
	}
	if runErr != nil {
		result.Error = runErr.Error()
		log.WithError(runErr).WithField("duration", result.Duration).Error("Job failed")
	} else {
		log.WithField("duration", result.Duration).Info("Job completed")
	}

	s.record(result)
}

func (s *Scheduler) record(result JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.history[result.JobName]; ok {
		h.add(result)
	}
}

// History returns a job's recorded executions.
func (s *Scheduler) History(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return h, nil
}

// Jobs lists registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
