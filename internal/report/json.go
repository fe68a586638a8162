package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mwhitfield/alphascore/internal/pipeline"
)

// WriteJSON writes the full run as indented JSON. Unlike the CSV this
// keeps feature vectors, skips and the summary block.
func WriteJSON(w io.Writer, run *pipeline.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("encode run json: %w", err)
	}
	return nil
}

// ReadJSON parses a file written by WriteJSON.
func ReadJSON(r io.Reader) (*pipeline.RunResult, error) {
	var run pipeline.RunResult
	if err := json.NewDecoder(r).Decode(&run); err != nil {
		return nil, fmt.Errorf("decode run json: %w", err)
	}
	return &run, nil
}

// SaveJSON writes the JSON report to path, creating parent directories.
func SaveJSON(path string, run *pipeline.RunResult) error {
	f, err := createReportFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteJSON(f, run)
}
