package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/internal/universe"
	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/database"
	"github.com/mwhitfield/alphascore/pkg/redis"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and connectivity",
	Long: `Runs every preflight check and reports what is broken.

Checks:
- configuration loads
- model files parse and validate
- universe file parses
- database connection, ping and pool statistics (when DATABASE_URL is set)
- Redis connection (when REDIS_ENABLED=true)

Example:
  go run ./cmd/alphascore doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	PrintHeader("AlphaScore Doctor")

	problems := 0

	// Configuration
	fmt.Println("Checking configuration...")
	cfg, err := loadConfig()
	if err != nil {
		PrintError(fmt.Sprintf("Failed to load config: %v", err))
		return fmt.Errorf("doctor found 1 problem")
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s)", cfg.Env))

	// Models
	fmt.Println("\nChecking models...")
	models, err := loadModels(cfg)
	if err != nil {
		PrintError(fmt.Sprintf("Failed to load models: %v", err))
		problems++
	} else {
		PrintSuccess(fmt.Sprintf("%d models loaded", len(models)))
		for _, m := range models {
			for _, w := range modelconfig.Warn(m) {
				PrintWarning(fmt.Sprintf("%s: %s (%s)", m.Meta.ModelID, w.Message, w.Code))
			}
		}
	}

	// Universe
	fmt.Println("\nChecking universe...")
	u, err := universe.Load(cfg.Pipeline.UniverseFile)
	if err != nil {
		PrintError(fmt.Sprintf("Failed to load universe: %v", err))
		problems++
	} else {
		PrintSuccess(fmt.Sprintf("Universe %q loaded (%d symbols)", u.Meta.UniverseID, u.Len()))
	}

	// Database
	fmt.Println("\nChecking database...")
	if cfg.Database.URL == "" {
		PrintInfo("DATABASE_URL not set, run history disabled")
	} else if err := checkDatabase(cfg); err != nil {
		PrintError(err.Error())
		problems++
	}

	// Redis
	fmt.Println("\nChecking Redis...")
	if !cfg.Redis.Enabled {
		PrintInfo("Redis disabled, provider cache off")
	} else {
		client, err := redis.New(cfg)
		if err != nil {
			PrintError(fmt.Sprintf("Failed to connect to Redis: %v", err))
			problems++
		} else {
			client.Close()
			PrintSuccess(fmt.Sprintf("Redis connected (%s:%s)", cfg.Redis.Host, cfg.Redis.Port))
		}
	}

	fmt.Println()
	if problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", problems)
	}
	PrintSuccess("All checks passed")
	return nil
}

func checkDatabase(cfg *config.Config) error {
	fmt.Printf("   URL: %s\n", maskPassword(cfg.Database.URL))

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	PrintSuccess("Database connected")
	PrintKeyValue("Response Time", status.ResponseTime, 18)
	PrintKeyValue("Max Connections", status.Stats.MaxConns, 18)
	PrintKeyValue("Total Connections", status.Stats.TotalConns, 18)
	PrintKeyValue("Idle Connections", status.Stats.IdleConns, 18)
	return nil
}

// maskPassword hides the password in a connection URL for display.
func maskPassword(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme < 0 {
		return url
	}
	colon := strings.Index(url[scheme+3:at], ":")
	if colon < 0 {
		return url
	}
	return url[:scheme+3+colon] + ":***" + url[at:]
}
