package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/alphascore/pkg/logger"
)

type stubJob struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.spec }
func (j *stubJob) Run(ctx context.Context) error {
	if j.run == nil {
		return nil
	}
	return j.run(ctx)
}

func testScheduler() *Scheduler {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "daily", spec: "@daily"}))

	err := s.AddJob(&stubJob{name: "daily", spec: "@hourly"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := testScheduler()

	err := s.AddJob(&stubJob{name: "broken", spec: "not a cron expression"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule")
}

func TestAddJobAcceptsSixFieldSpec(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "weekday", spec: "0 30 6 * * MON-FRI"}))
}

func TestRunNowRecordsSuccess(t *testing.T) {
	s := testScheduler()

	calls := 0
	job := &stubJob{name: "count", spec: "@daily", run: func(ctx context.Context) error {
		calls++
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunNow("count"))
	assert.Equal(t, 1, calls)

	history, err := s.History("count")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1.0, history.SuccessRate())
}

func TestRunNowUnknownJob(t *testing.T) {
	s := testScheduler()

	err := s.RunNow("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunRetriesUntilSuccess(t *testing.T) {
	s := testScheduler()

	calls := 0
	job := &stubJob{name: "flaky", spec: "@daily", run: func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunNow("flaky"))
	assert.Equal(t, 3, calls)

	history, err := s.History("flaky")
	require.NoError(t, err)
	latest := history.Latest()
	require.NotNil(t, latest)
	assert.True(t, latest.Success)
}

func TestRunFailsAfterAllRetries(t *testing.T) {
	s := testScheduler()
	s.maxRetries = 1

	calls := 0
	job := &stubJob{name: "doomed", spec: "@daily", run: func(ctx context.Context) error {
		calls++
		return errors.New("permanent")
	}}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunNow("doomed"))
	assert.Equal(t, 2, calls)

	history, err := s.History("doomed")
	require.NoError(t, err)
	latest := history.Latest()
	require.NotNil(t, latest)
	assert.False(t, latest.Success)
	assert.Equal(t, "permanent", latest.Error)
	assert.Equal(t, 0.0, history.SuccessRate())
}

func TestJobsSorted(t *testing.T) {
	s := testScheduler()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.AddJob(&stubJob{name: name, spec: "@daily"}))
	}

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, s.Jobs())
}

func TestHistoryCapsResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistoryResults+20; i++ {
		h.Add(JobResult{JobName: fmt.Sprintf("r%d", i), Success: true})
	}

	assert.Len(t, h.Results, maxHistoryResults)
	assert.Equal(t, fmt.Sprintf("r%d", maxHistoryResults+19), h.Latest().JobName)
}

func TestHistoryEmpty(t *testing.T) {
	h := &JobHistory{}

	assert.Nil(t, h.Latest())
	assert.Equal(t, 0.0, h.SuccessRate())
}
