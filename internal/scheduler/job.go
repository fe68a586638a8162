package scheduler

import (
	"context"
	"time"
)

// maxHistoryResults bounds per-job history memory.
const maxHistoryResults = 100

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job; must be unique per scheduler.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression, six fields with seconds,
	// or a descriptor like @daily.
	Schedule() string
}

// JobResult is the outcome of one job execution, retries included.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the most recent results for one job.
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest past the cap.
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistoryResults {
		h.Results = h.Results[len(h.Results)-maxHistoryResults:]
	}
}

// Latest returns the most recent result, or nil when the job has not
// run yet.
func (h *JobHistory) Latest() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	return &h.Results[len(h.Results)-1]
}

// SuccessRate returns the fraction of recorded runs that succeeded.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}

	succeeded := 0
	for _, r := range h.Results {
		if r.Success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(h.Results))
}
