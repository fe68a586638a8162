// Package scheduler runs registered jobs on cron schedules with retry
// and a bounded in-memory execution history.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mwhitfield/alphascore/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Minute
)

// Scheduler manages scheduled jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	history map[string]*JobHistory
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
}

// New creates a scheduler. Schedules use six-field cron expressions
// (with seconds) or descriptors like @daily.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log.WithField("module", "scheduler"),
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// AddJob registers a job under its name and schedule. Names must be
// unique.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// Start begins dispatching jobs on their schedules.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops dispatching and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow triggers a registered job immediately, off schedule. The job
// runs on the calling goroutine so callers see completion.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.runJob(job)
	return nil
}

// Jobs returns registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// History returns the execution history for one job.
func (s *Scheduler) History(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return history, nil
}

// runJob executes a job with retries and records the outcome.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	started := time.Now()

	s.logger.WithField("job", name).Info("Job started")

	var lastErr error
	success := false

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := job.Run(context.Background()); err != nil {
			lastErr = err
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"job":     name,
				"attempt": attempt + 1,
			}).Warn("Job execution failed")

			if attempt < s.maxRetries {
				time.Sleep(s.retryDelay)
			}
			continue
		}
		success = true
		break
	}

	result := JobResult{
		JobName:   name,
		StartTime: started,
		EndTime:   time.Now(),
		Success:   success,
	}
	result.Duration = result.EndTime.Sub(result.StartTime)
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.Add(result)
	}
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Info("Job completed")
	} else {
		s.logger.WithError(lastErr).WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Error("Job failed after all retries")
	}
}
