package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/internal/scoring"
)

func sampleRun() *pipeline.RunResult {
	asOf := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	return &pipeline.RunResult{
		ModelID:      "test-model",
		ModelVersion: "1.0.0",
		ConfigHash:   "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		UniverseID:   "test-universe",
		StartedAt:    time.Date(2026, 8, 22, 14, 30, 5, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Results: []pipeline.CompositeResult{
			{
				Symbol: "AAPL",
				Name:   "Apple Inc.",
				Sector: "Technology",
				Components: []scoring.ComponentScore{
					{Name: "momentum", Weight: 0.6, Score: 80},
					{Name: "stability", Weight: 0.4, Score: 50},
				},
				Composite:  68,
				Rating:     "Strong",
				Rank:       1,
				Confidence: features.ConfidenceFull,
				BarCount:   400,
				AsOf:       asOf,
				Features:   &features.Vector{RSI14: 61.25, Confidence: features.ConfidenceFull, BarCount: 400},
			},
			{
				Symbol: "MSFT",
				Name:   "Microsoft Corporation",
				Sector: "Technology",
				Components: []scoring.ComponentScore{
					{Name: "momentum", Weight: 0.6, Score: 33.333333333333336},
					{Name: "stability", Weight: 0.4, Score: 100},
				},
				Composite:  60.00000000000001,
				Rating:     "Neutral",
				Rank:       2,
				Confidence: features.ConfidenceDegraded,
				BarCount:   120,
				AsOf:       asOf,
			},
		},
		Skipped: []pipeline.SkippedSymbol{
			{Symbol: "GONE", Reason: pipeline.ReasonDataUnavailable},
		},
		Summary: pipeline.Summary{
			Scored:          2,
			Skipped:         1,
			MeanComposite:   64.0,
			MedianComposite: 64.0,
			Components: []pipeline.ComponentSummary{
				{Name: "momentum", Mean: 56.7, Median: 56.7, Leader: "AAPL", LeaderScore: 80},
				{Name: "stability", Mean: 75, Median: 75, Leader: "MSFT", LeaderScore: 100},
			},
			Ratings: []pipeline.RatingCount{
				{Rating: "Excellent", Count: 0},
				{Rating: "Strong", Count: 1},
				{Rating: "Neutral", Count: 1},
			},
			Sectors: []pipeline.SectorSummary{
				{Sector: "Technology", Count: 2, MeanComposite: 64.0},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"rank,symbol,name,sector,composite,rating,confidence,bar_count,as_of,momentum,stability",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,AAPL,Apple Inc.,Technology,68,Strong,full,400,2026-08-21"))
	assert.Contains(t, lines[2], "MSFT")
	assert.Contains(t, lines[2], "degraded")
}

func TestCSVRoundTrip(t *testing.T) {
	run := sampleRun()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, run))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	for i, want := range run.Results {
		got := parsed[i]
		assert.Equal(t, want.Rank, got.Rank)
		assert.Equal(t, want.Symbol, got.Symbol)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Sector, got.Sector)
		assert.Equal(t, want.Composite, got.Composite)
		assert.Equal(t, want.Rating, got.Rating)
		assert.Equal(t, want.Confidence, got.Confidence)
		assert.Equal(t, want.BarCount, got.BarCount)
		assert.True(t, got.AsOf.Equal(want.AsOf))

		require.Len(t, got.Components, len(want.Components))
		for j, cs := range want.Components {
			assert.Equal(t, cs.Name, got.Components[j].Name)
			assert.Equal(t, cs.Score, got.Components[j].Score)
		}
	}
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("symbol,score\nAAPL,99\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header")
}

func TestReadCSVRejectsBadCell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))
	broken := strings.Replace(buf.String(), ",68,", ",not-a-number,", 1)

	_, err := ReadCSV(strings.NewReader(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "composite")
}

func TestWriteCSVEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &pipeline.RunResult{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, strings.Join(csvBaseHeader, ","), lines[0])
}

func TestJSONRoundTrip(t *testing.T) {
	run := sampleRun()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, run))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, run.ModelID, got.ModelID)
	assert.Equal(t, run.ConfigHash, got.ConfigHash)
	assert.Equal(t, run.Duration, got.Duration)
	assert.True(t, got.StartedAt.Equal(run.StartedAt))

	require.Len(t, got.Results, 2)
	assert.Equal(t, run.Results[0].Composite, got.Results[0].Composite)
	assert.Equal(t, run.Results[1].Composite, got.Results[1].Composite)
	require.NotNil(t, got.Results[0].Features)
	assert.Equal(t, 61.25, got.Results[0].Features.RSI14)
	assert.Nil(t, got.Results[1].Features)

	assert.Equal(t, run.Skipped, got.Skipped)
	assert.Equal(t, run.Summary.Components, got.Summary.Components)
	assert.Equal(t, run.Summary.Ratings, got.Summary.Ratings)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleRun()))
	out := buf.String()

	assert.Contains(t, out, "Scoring Run  test-model v1.0.0")
	assert.Contains(t, out, "Universe")
	assert.Contains(t, out, "test-universe")
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abcdef0123456789abcdef")

	assert.Contains(t, out, "RANKING")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "COMPONENTS")
	assert.Contains(t, out, "leader AAPL (80.00)")
	assert.Contains(t, out, "RATINGS")
	assert.Contains(t, out, "SECTORS")
	assert.Contains(t, out, "SKIPPED")
	assert.Contains(t, out, pipeline.ReasonDataUnavailable)

	aaplLine := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "AAPL") && strings.Contains(line, "Strong") {
			aaplLine = line
			break
		}
	}
	require.NotEmpty(t, aaplLine)
	assert.Contains(t, aaplLine, "68.00")
}

func TestWriteTextEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, &pipeline.RunResult{ModelID: "empty", ModelVersion: "0.0.1"}))

	assert.Contains(t, buf.String(), "No symbols scored.")
}

func TestSaveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	run := sampleRun()

	saved, err := SaveAll(dir, run)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "test-model-20260822-143005.csv"), saved.CSV)
	assert.Equal(t, filepath.Join(dir, "test-model-20260822-143005.json"), saved.JSON)
	assert.Equal(t, filepath.Join(dir, "test-model-20260822-143005.txt"), saved.Text)

	for _, path := range []string{saved.CSV, saved.JSON, saved.Text} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}

	f, err := os.Open(saved.CSV)
	require.NoError(t, err)
	defer f.Close()
	parsed, err := ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, parsed, 2)

	jf, err := os.Open(saved.JSON)
	require.NoError(t, err)
	defer jf.Close()
	loaded, err := ReadJSON(jf)
	require.NoError(t, err)
	assert.Equal(t, "test-model", loaded.ModelID)
}
