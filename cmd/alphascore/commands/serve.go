package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/internal/api"
	"github.com/mwhitfield/alphascore/internal/api/handlers"
	"github.com/mwhitfield/alphascore/internal/storage"
	"github.com/mwhitfield/alphascore/pkg/database"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scores API server",
	Long: `Starts the read-only HTTP API.

Endpoints:
  GET /health                - health check
  GET /metrics               - Prometheus metrics
  GET /api/v1/models         - loaded models
  GET /api/v1/models/{id}    - one model
  GET /api/v1/runs           - run history (requires DATABASE_URL)
  GET /api/v1/runs/latest    - latest stored run (requires DATABASE_URL)

Example:
  go run ./cmd/alphascore serve
  go run ./cmd/alphascore serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := newLogger(cfg)

	models, err := loadModels(cfg)
	if err != nil {
		return err
	}

	// Run history is served only when a database is configured.
	var runSource handlers.RunSource
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		store := storage.New(db.Pool, log)
		if err := store.EnsureSchema(context.Background()); err != nil {
			return err
		}
		runSource = store
		log.Info("Run history enabled")
	} else {
		log.Warn("DATABASE_URL not set, run history endpoints disabled")
	}

	scoreHandler := handlers.NewScoreHandler(models, runSource, log)
	server := api.New(cfg, log, api.NewRouter(scoreHandler, log))

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET /health")
	fmt.Println("  GET /metrics")
	fmt.Println("  GET /api/v1/models")
	fmt.Println("  GET /api/v1/models/{id}")
	fmt.Println("  GET /api/v1/runs")
	fmt.Println("  GET /api/v1/runs/latest")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
