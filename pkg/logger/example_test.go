package logger_test

import (
	"errors"

	"github.com/mwhitfield/alphascore/pkg/config"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// Example_basic demonstrates basic logger usage.
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Scoring run started")
	log.Warn("Universe file missing sectors")
	log.Error("Provider unreachable")

	log.Infof("Scored %d of %d symbols", 48, 50)
	log.Warnf("Retry attempt %d of %d", 3, 5)
}

// Example_withFields demonstrates structured logging with fields.
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	runLog := log.WithField("model", "quality-momentum")
	runLog.Info("Run completed")

	symbolLog := log.WithFields(map[string]interface{}{
		"symbol":    "AAPL",
		"composite": 82.4,
		"rating":    "Excellent",
		"rank":      1,
	})
	symbolLog.Info("Symbol ranked")
}

// Example_withError demonstrates error logging.
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("chart request timeout")
	log.WithError(err).Error("Failed to fetch bars")

	log.WithError(err).
		WithFields(map[string]interface{}{
			"symbol":      "TSLA",
			"retry_count": 3,
		}).
		Error("Symbol skipped after retries")
}
