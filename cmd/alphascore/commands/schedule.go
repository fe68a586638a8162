package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/scheduler"
	"github.com/mwhitfield/alphascore/internal/scheduler/jobs"
	"github.com/mwhitfield/alphascore/internal/scoring"
	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/internal/universe"
	"github.com/mwhitfield/alphascore/pkg/database"
	"github.com/mwhitfield/alphascore/pkg/metrics"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scoring on a cron schedule",
	Long: `Starts the scheduler daemon.

Registers one scoring job per model on the configured cron expression
(SCHEDULER_SPEC, six fields with seconds), plus a weekly run history
cleanup when a database is configured.

Subcommands:
  start  - start the scheduler daemon
  jobs   - print the jobs that would be registered

Example:
  go run ./cmd/alphascore schedule start
  go run ./cmd/alphascore schedule jobs`,
}

var (
	scheduleStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduleStart,
	}

	scheduleJobsCmd = &cobra.Command{
		Use:   "jobs",
		Short: "Print the jobs that would be registered",
		RunE:  runScheduleJobs,
	}

	scheduleRetentionDays int
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleJobsCmd)

	scheduleStartCmd.Flags().IntVar(&scheduleRetentionDays, "retention-days", 90, "run history retention for the cleanup job")
}

func runScheduleStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg)

	models, err := loadModels(cfg)
	if err != nil {
		return err
	}
	u, err := universe.Load(cfg.Pipeline.UniverseFile)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	provider, cleanup, err := buildProvider(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// The store is shared by every scoring job and the cleanup job.
	var store *storage.Store
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		store = storage.New(db.Pool, log)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return err
		}
	}

	runner := pipeline.NewRunner(
		provider,
		features.NewExtractor(log),
		scoring.NewScorer(log),
		metrics.New(),
		log,
		pipeline.Config{
			Workers:      cfg.Pipeline.Workers,
			LookbackDays: cfg.Provider.LookbackDays,
		},
	)

	sched := scheduler.New(log)
	for _, model := range models {
		job := jobs.NewScoringJob(runner, model, u, store, cfg.Pipeline.OutputDir, cfg.Scheduler.Spec, log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
	}
	if store != nil {
		retention := time.Duration(scheduleRetentionDays) * 24 * time.Hour
		if err := sched.AddJob(jobs.NewHistoryCleanupJob(store, retention, log)); err != nil {
			return err
		}
	}

	sched.Start()

	PrintHeader("AlphaScore Scheduler")
	PrintKeyValue("Schedule", cfg.Scheduler.Spec, 8)
	PrintKeyValue("Models", len(models), 8)
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("   - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runScheduleJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	models, err := loadModels(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Scheduled Jobs")

	columns := []string{"JOB", "SCHEDULE"}
	widths := []int{32, 20}
	PrintTableHeader(columns, widths)
	for _, model := range models {
		PrintTableRow([]string{"scoring_" + model.Meta.ModelID, cfg.Scheduler.Spec}, widths)
	}
	if cfg.Database.URL != "" {
		PrintTableRow([]string{"history_cleanup", "0 0 3 * * SUN"}, widths)
	} else {
		PrintInfo("history_cleanup skipped: DATABASE_URL not set")
	}

	return nil
}
