package commands

import (
	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphascore",
	Short: "AlphaScore - configurable multi-factor equity scoring",
	Long: `AlphaScore CLI

Scores an equity universe against configurable multi-factor models:
fetch daily bars and fundamentals, extract features, map them through
band tables into weighted component scores, rank by composite and
export the results.

Usage:
  go run ./cmd/alphascore [command]

Examples:
  go run ./cmd/alphascore run --model quality-momentum
  go run ./cmd/alphascore models list
  go run ./cmd/alphascore serve
  go run ./cmd/alphascore doctor`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadConfig loads configuration and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(cfg)
}
