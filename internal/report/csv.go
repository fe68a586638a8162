package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/scoring"
)

// Fixed leading columns; component columns follow in model order.
var csvBaseHeader = []string{
	"rank", "symbol", "name", "sector",
	"composite", "rating", "confidence", "bar_count", "as_of",
}

const csvDateLayout = "2006-01-02"

// WriteCSV writes the ranked results as CSV. Column order is stable
// for a given model, so diffs between runs line up row by row.
func WriteCSV(w io.Writer, run *pipeline.RunResult) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, csvBaseHeader...)
	if len(run.Results) > 0 {
		for _, cs := range run.Results[0].Components {
			header = append(header, cs.Name)
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, res := range run.Results {
		row := []string{
			strconv.Itoa(res.Rank),
			res.Symbol,
			res.Name,
			res.Sector,
			formatFloat(res.Composite),
			res.Rating,
			string(res.Confidence),
			strconv.Itoa(res.BarCount),
			res.AsOf.Format(csvDateLayout),
		}
		for _, cs := range res.Components {
			row = append(row, formatFloat(cs.Score))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", res.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV back into results.
// Component weights are not part of the CSV and come back zero.
func ReadCSV(r io.Reader) ([]pipeline.CompositeResult, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < len(csvBaseHeader) {
		return nil, fmt.Errorf("csv header too short: %d columns", len(header))
	}
	for i, want := range csvBaseHeader {
		if header[i] != want {
			return nil, fmt.Errorf("csv column %d is %q, want %q", i, header[i], want)
		}
	}
	componentNames := header[len(csvBaseHeader):]

	var results []pipeline.CompositeResult
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		res, err := parseCSVRow(row, componentNames)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	return results, nil
}

func parseCSVRow(row []string, componentNames []string) (*pipeline.CompositeResult, error) {
	if len(row) != len(csvBaseHeader)+len(componentNames) {
		return nil, fmt.Errorf("csv row has %d columns, want %d", len(row), len(csvBaseHeader)+len(componentNames))
	}

	rank, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, fmt.Errorf("parse rank %q: %w", row[0], err)
	}
	composite, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return nil, fmt.Errorf("parse composite %q: %w", row[4], err)
	}
	barCount, err := strconv.Atoi(row[7])
	if err != nil {
		return nil, fmt.Errorf("parse bar_count %q: %w", row[7], err)
	}
	asOf, err := time.Parse(csvDateLayout, row[8])
	if err != nil {
		return nil, fmt.Errorf("parse as_of %q: %w", row[8], err)
	}

	res := &pipeline.CompositeResult{
		Rank:       rank,
		Symbol:     row[1],
		Name:       row[2],
		Sector:     row[3],
		Composite:  composite,
		Rating:     row[5],
		Confidence: features.Confidence(row[6]),
		BarCount:   barCount,
		AsOf:       asOf,
	}

	for i, name := range componentNames {
		score, err := strconv.ParseFloat(row[len(csvBaseHeader)+i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse component %s %q: %w", name, row[len(csvBaseHeader)+i], err)
		}
		res.Components = append(res.Components, scoring.ComponentScore{Name: name, Score: score})
	}

	return res, nil
}

// SaveCSV writes the CSV to path, creating parent directories.
func SaveCSV(path string, run *pipeline.RunResult) error {
	f, err := createReportFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteCSV(f, run)
}

// formatFloat keeps full precision so a written file parses back to
// the same values.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
