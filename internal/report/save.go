// Package report renders finished scoring runs as CSV, JSON and plain
// text, and writes timestamped report sets to an output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwhitfield/alphascore/internal/pipeline"
)

const (
	timestampLayout = "20060102-150405"
	timeRound       = 10 * time.Millisecond
)

// Saved lists the files one SaveAll call produced.
type Saved struct {
	CSV  string
	JSON string
	Text string
}

// SaveAll writes all three report formats under dir using a shared
// "<model>-<timestamp>" stem, so one run's files sort together.
func SaveAll(dir string, run *pipeline.RunResult) (*Saved, error) {
	stem := fmt.Sprintf("%s-%s", run.ModelID, run.StartedAt.Format(timestampLayout))

	saved := &Saved{
		CSV:  filepath.Join(dir, stem+".csv"),
		JSON: filepath.Join(dir, stem+".json"),
		Text: filepath.Join(dir, stem+".txt"),
	}

	if err := SaveCSV(saved.CSV, run); err != nil {
		return nil, err
	}
	if err := SaveJSON(saved.JSON, run); err != nil {
		return nil, err
	}
	if err := SaveText(saved.Text, run); err != nil {
		return nil, err
	}

	return saved, nil
}

func createReportFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report file %s: %w", filepath.Base(path), err)
	}
	return f, nil
}
