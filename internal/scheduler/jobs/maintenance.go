package jobs

import (
	"context"
	"time"

	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// HistoryCleanupJob prunes stored runs past the retention window.
type HistoryCleanupJob struct {
	store     *storage.Store
	retention time.Duration
	logger    *logger.Logger
}

// NewHistoryCleanupJob creates a cleanup job for the run history.
func NewHistoryCleanupJob(store *storage.Store, retention time.Duration, log *logger.Logger) *HistoryCleanupJob {
	return &HistoryCleanupJob{
		store:     store,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name.
func (j *HistoryCleanupJob) Name() string {
	return "history_cleanup"
}

// Schedule runs weekly, early Sunday morning.
func (j *HistoryCleanupJob) Schedule() string {
	return "0 0 3 * * SUN"
}

// Run deletes runs older than the retention window.
func (j *HistoryCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	deleted, err := j.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Run history pruned")
	}

	return nil
}
