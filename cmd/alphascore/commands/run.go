package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/marketdata"
	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/report"
	"github.com/mwhitfield/alphascore/internal/scoring"
	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/internal/universe"
	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/database"
	"github.com/mwhitfield/alphascore/pkg/httputil"
	"github.com/mwhitfield/alphascore/pkg/logger"
	"github.com/mwhitfield/alphascore/pkg/metrics"
	"github.com/mwhitfield/alphascore/pkg/redis"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scoring model over the universe",
	Long: `Runs one scoring model over the configured universe.

This command:
- loads the model (from the model directory, or a builtin preset)
- fetches daily bars and fundamentals for every universe symbol
- extracts features and scores them through the model's band tables
- ranks by composite score and prints the ranking
- writes CSV, JSON and text reports to the output directory
- persists the run when DATABASE_URL is configured

Example:
  go run ./cmd/alphascore run
  go run ./cmd/alphascore run --model trend-strength --top 10
  go run ./cmd/alphascore run --universe config/universe.yaml --out out`,
	RunE: runScoring,
}

var (
	runModelID      string
	runUniverseFile string
	runOutputDir    string
	runWorkers      int
	runTopN         int
	runNoPersist    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runModelID, "model", "quality-momentum", "model id to run")
	runCmd.Flags().StringVar(&runUniverseFile, "universe", "", "universe file (default from UNIVERSE_FILE)")
	runCmd.Flags().StringVar(&runOutputDir, "out", "", "report output directory (default from OUTPUT_DIR)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent fetch workers (default from PIPELINE_WORKERS)")
	runCmd.Flags().IntVar(&runTopN, "top", 20, "ranking rows to print (0 = all)")
	runCmd.Flags().BoolVar(&runNoPersist, "no-persist", false, "skip saving the run to the database")
}

func runScoring(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cfg)

	log := newLogger(cfg)

	// Resolve the model before touching the network.
	model, err := resolveModel(cfg, runModelID)
	if err != nil {
		return err
	}
	for _, warning := range modelconfig.Warn(model) {
		PrintWarning(fmt.Sprintf("%s: %s", warning.Code, warning.Message))
	}

	u, err := universe.Load(cfg.Pipeline.UniverseFile)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	PrintHeader(fmt.Sprintf("AlphaScore Run  %s v%s", model.Meta.ModelID, model.Meta.Version))
	PrintKeyValue("Universe", fmt.Sprintf("%s (%d symbols)", u.Meta.UniverseID, u.Len()), 10)
	PrintKeyValue("Workers", cfg.Pipeline.Workers, 10)
	PrintKeyValue("Lookback", fmt.Sprintf("%d days", cfg.Provider.LookbackDays), 10)
	PrintSeparator()

	provider, cleanup, err := buildProvider(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

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

	// Interrupt cancels the run; partial output is discarded.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := runner.Run(ctx, model, u)
	if err != nil {
		return fmt.Errorf("scoring run: %w", err)
	}

	printRanking(run, runTopN)

	saved, err := report.SaveAll(cfg.Pipeline.OutputDir, run)
	if err != nil {
		return fmt.Errorf("save reports: %w", err)
	}
	fmt.Println()
	PrintSuccess("Reports written:")
	fmt.Printf("   %s\n", saved.CSV)
	fmt.Printf("   %s\n", saved.JSON)
	fmt.Printf("   %s\n", saved.Text)

	if cfg.Database.URL != "" && !runNoPersist {
		if err := persistRun(ctx, cfg, log, run); err != nil {
			return err
		}
	}

	return nil
}

func applyRunFlags(cfg *config.Config) {
	if runUniverseFile != "" {
		cfg.Pipeline.UniverseFile = runUniverseFile
	}
	if runOutputDir != "" {
		cfg.Pipeline.OutputDir = runOutputDir
	}
	if runWorkers > 0 {
		cfg.Pipeline.Workers = runWorkers
	}
}

// resolveModel loads models from the model directory when it exists,
// falling back to the builtin presets, and picks one by id.
func resolveModel(cfg *config.Config, id string) (*modelconfig.Model, error) {
	models, err := loadModels(cfg)
	if err != nil {
		return nil, err
	}

	if model := modelconfig.Find(models, id); model != nil {
		return model, nil
	}

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.Meta.ModelID
	}
	return nil, fmt.Errorf("unknown model %q, available: %v", id, ids)
}

// loadModels reads the model directory, or serves the builtin presets
// when the directory does not exist.
func loadModels(cfg *config.Config) ([]*modelconfig.Model, error) {
	if _, err := os.Stat(cfg.Pipeline.ModelDir); os.IsNotExist(err) {
		return modelconfig.Builtin(), nil
	}

	models, err := modelconfig.LoadDir(cfg.Pipeline.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("load models from %s: %w", cfg.Pipeline.ModelDir, err)
	}
	return models, nil
}

// buildProvider assembles the provider stack: Yahoo fetcher, optional
// Redis cache, optional circuit breaker.
func buildProvider(cfg *config.Config, log *logger.Logger) (marketdata.Provider, func(), error) {
	var profiles *marketdata.ProfileScraper
	if cfg.Provider.ProfileBaseURL != "" {
		httpClient := httputil.New(cfg, log)
		profiles = marketdata.NewProfileScraper(httpClient, cfg.Provider.ProfileBaseURL, log)
	}

	var provider marketdata.Provider = marketdata.NewYahooProvider(cfg.Provider, profiles, log)
	cleanup := func() {}

	if cfg.Redis.Enabled {
		client, err := redis.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		provider = marketdata.NewCachedProvider(provider, redis.NewCache(client, "alphascore"), log)
		cleanup = func() { client.Close() }
	}

	if cfg.Provider.BreakerEnabled {
		provider = marketdata.NewBreakerProvider(provider, log)
	}

	return provider, cleanup, nil
}

func persistRun(ctx context.Context, cfg *config.Config, log *logger.Logger, run *pipeline.RunResult) error {
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := storage.New(db.Pool, log)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	runID, err := store.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Run persisted (id %d)", runID))
	return nil
}

// printRanking prints the top rows of the ranking as a table, then the
// skip summary.
func printRanking(run *pipeline.RunResult, topN int) {
	fmt.Println()
	if len(run.Results) == 0 {
		PrintWarning("No symbols scored")
	} else {
		columns := []string{"RANK", "SYMBOL", "COMPOSITE", "RATING", "CONF", "BARS"}
		widths := []int{4, 8, 9, 10, 8, 5}

		PrintTableHeader(columns, widths)
		for _, res := range run.Results {
			if topN > 0 && res.Rank > topN {
				break
			}
			PrintTableRow([]string{
				strconv.Itoa(res.Rank),
				res.Symbol,
				fmt.Sprintf("%.2f", res.Composite),
				res.Rating,
				string(res.Confidence),
				strconv.Itoa(res.BarCount),
			}, widths)
		}
		if topN > 0 && len(run.Results) > topN {
			fmt.Printf("   ... %d more\n", len(run.Results)-topN)
		}
	}

	fmt.Println()
	PrintKeyValue("Scored", run.Summary.Scored, 7)
	PrintKeyValue("Skipped", run.Summary.Skipped, 7)
	PrintKeyValue("Mean", fmt.Sprintf("%.2f", run.Summary.MeanComposite), 7)
	PrintKeyValue("Median", fmt.Sprintf("%.2f", run.Summary.MedianComposite), 7)

	for _, sk := range run.Skipped {
		PrintWarning(fmt.Sprintf("skipped %s: %s", sk.Symbol, sk.Reason))
	}
}
