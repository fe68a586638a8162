package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwhitfield/alphascore/internal/pipeline"
)

const textWidth = 59

var (
	textSeparator       = strings.Repeat("─", textWidth)
	textDoubleSeparator = strings.Repeat("═", textWidth)
)

// WriteText renders a human-readable run report: header, ranking
// table, component and rating breakdowns, skips.
func WriteText(w io.Writer, run *pipeline.RunResult) error {
	tw := &textPrinter{w: w}

	tw.line(textDoubleSeparator)
	tw.printf("  Scoring Run  %s v%s\n", run.ModelID, run.ModelVersion)
	tw.line(textSeparator)
	tw.keyValue("Universe", run.UniverseID)
	tw.keyValue("Started", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	tw.keyValue("Duration", run.Duration.Round(timeRound).String())
	tw.keyValue("Config hash", shortHash(run.ConfigHash))
	tw.keyValue("Scored", fmt.Sprintf("%d", run.Summary.Scored))
	tw.keyValue("Skipped", fmt.Sprintf("%d", run.Summary.Skipped))
	tw.keyValue("Mean composite", fmt.Sprintf("%.2f", run.Summary.MeanComposite))
	tw.keyValue("Median composite", fmt.Sprintf("%.2f", run.Summary.MedianComposite))
	tw.line(textSeparator)

	writeRankingTable(tw, run)
	writeComponentSection(tw, run)
	writeRatingSection(tw, run)
	writeSectorSection(tw, run)
	writeSkippedSection(tw, run)

	return tw.err
}

func writeRankingTable(tw *textPrinter, run *pipeline.RunResult) {
	if len(run.Results) == 0 {
		tw.line("")
		tw.line("  No symbols scored.")
		return
	}

	tw.line("")
	tw.line("  RANKING")
	tw.printf("  %4s  %-8s  %9s  %-10s  %-8s  %5s\n",
		"RANK", "SYMBOL", "COMPOSITE", "RATING", "CONF", "BARS")
	tw.line("  " + strings.Repeat("─", 55))
	for _, res := range run.Results {
		tw.printf("  %4d  %-8s  %9.2f  %-10s  %-8s  %5d\n",
			res.Rank, res.Symbol, res.Composite, res.Rating, res.Confidence, res.BarCount)
	}
}

func writeComponentSection(tw *textPrinter, run *pipeline.RunResult) {
	if len(run.Summary.Components) == 0 {
		return
	}

	tw.line("")
	tw.line("  COMPONENTS")
	nameWidth := 0
	for _, cs := range run.Summary.Components {
		if len(cs.Name) > nameWidth {
			nameWidth = len(cs.Name)
		}
	}
	for _, cs := range run.Summary.Components {
		tw.printf("  %-*s  mean %6.2f  median %6.2f", nameWidth, cs.Name, cs.Mean, cs.Median)
		if cs.Leader != "" {
			tw.printf("  leader %s (%.2f)", cs.Leader, cs.LeaderScore)
		}
		tw.line("")
	}
}

func writeRatingSection(tw *textPrinter, run *pipeline.RunResult) {
	if len(run.Summary.Ratings) == 0 {
		return
	}

	tw.line("")
	tw.line("  RATINGS")
	for _, rc := range run.Summary.Ratings {
		tw.printf("  %-12s: %d\n", rc.Rating, rc.Count)
	}
}

func writeSectorSection(tw *textPrinter, run *pipeline.RunResult) {
	if len(run.Summary.Sectors) == 0 {
		return
	}

	tw.line("")
	tw.line("  SECTORS")
	for _, sc := range run.Summary.Sectors {
		tw.printf("  %-24s  %3d symbols  mean %6.2f\n", sc.Sector, sc.Count, sc.MeanComposite)
	}
}

func writeSkippedSection(tw *textPrinter, run *pipeline.RunResult) {
	if len(run.Skipped) == 0 {
		return
	}

	tw.line("")
	tw.line("  SKIPPED")
	for _, sk := range run.Skipped {
		tw.printf("  %-8s  %s\n", sk.Symbol, sk.Reason)
	}
}

// SaveText writes the text report to path, creating parent directories.
func SaveText(path string, run *pipeline.RunResult) error {
	f, err := createReportFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteText(f, run)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// textPrinter carries the first write error so sections can print
// without per-line checks.
type textPrinter struct {
	w   io.Writer
	err error
}

func (p *textPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *textPrinter) line(s string) {
	p.printf("%s\n", s)
}

func (p *textPrinter) keyValue(key, value string) {
	p.printf("  %-16s : %s\n", key, value)
}
