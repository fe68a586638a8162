// Package jobs holds the scheduled work units: scoring runs and run
// history maintenance.
package jobs

import (
	"context"
	"fmt"

	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/report"
	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/internal/universe"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// ScoringJob runs one model over the universe on a schedule, writes
// the report set and persists the run when a store is configured.
type ScoringJob struct {
	runner    *pipeline.Runner
	model     *modelconfig.Model
	universe  *universe.Universe
	store     *storage.Store // nil disables persistence
	outputDir string
	spec      string
	logger    *logger.Logger
}

// NewScoringJob creates a scheduled scoring job for one model.
func NewScoringJob(
	runner *pipeline.Runner,
	model *modelconfig.Model,
	u *universe.Universe,
	store *storage.Store,
	outputDir string,
	spec string,
	log *logger.Logger,
) *ScoringJob {
	return &ScoringJob{
		runner:    runner,
		model:     model,
		universe:  u,
		store:     store,
		outputDir: outputDir,
		spec:      spec,
		logger:    log,
	}
}

// Name returns the job name.
func (j *ScoringJob) Name() string {
	return "scoring_" + j.model.Meta.ModelID
}

// Schedule returns the configured cron expression.
func (j *ScoringJob) Schedule() string {
	return j.spec
}

// Run executes the scoring run end to end.
func (j *ScoringJob) Run(ctx context.Context) error {
	j.logger.WithField("model", j.model.Meta.ModelID).Info("Starting scheduled scoring run")

	run, err := j.runner.Run(ctx, j.model, j.universe)
	if err != nil {
		return fmt.Errorf("scoring run: %w", err)
	}

	saved, err := report.SaveAll(j.outputDir, run)
	if err != nil {
		return fmt.Errorf("save reports: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"model":  run.ModelID,
		"scored": run.Summary.Scored,
		"csv":    saved.CSV,
	}).Info("Reports written")

	if j.store != nil {
		runID, err := j.store.SaveRun(ctx, run)
		if err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
		j.logger.WithField("run_id", runID).Info("Run persisted")
	}

	return nil
}
