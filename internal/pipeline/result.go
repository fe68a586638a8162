package pipeline

import (
	"sort"
	"time"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/scoring"
)

// Skip reasons attached to excluded symbols.
const (
	ReasonDataUnavailable     = "data_unavailable"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonFetchError          = "fetch_error"
)

// CompositeResult is one fully scored symbol. Immutable once the run
// that produced it returns.
type CompositeResult struct {
	Symbol     string                   `json:"symbol"`
	Name       string                   `json:"name,omitempty"`
	Sector     string                   `json:"sector,omitempty"`
	Components []scoring.ComponentScore `json:"components"`
	Composite  float64                  `json:"composite"`
	Rating     string                   `json:"rating"`
	Rank       int                      `json:"rank"`
	Confidence features.Confidence      `json:"confidence"`
	BarCount   int                      `json:"bar_count"`
	AsOf       time.Time                `json:"as_of"`
	Features   *features.Vector         `json:"features,omitempty"`

	// universePos breaks composite ties deterministically.
	universePos int
}

// Component returns the named component score, or 0 and false.
func (r *CompositeResult) Component(name string) (float64, bool) {
	for _, cs := range r.Components {
		if cs.Name == name {
			return cs.Score, true
		}
	}
	return 0, false
}

// SkippedSymbol is a symbol the run excluded rather than scored.
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// RunResult is the complete outcome of one scoring run.
type RunResult struct {
	ModelID      string            `json:"model_id"`
	ModelVersion string            `json:"model_version"`
	ConfigHash   string            `json:"config_hash"`
	UniverseID   string            `json:"universe_id"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration"`
	Results      []CompositeResult `json:"results"`
	Skipped      []SkippedSymbol   `json:"skipped,omitempty"`
	Summary      Summary           `json:"summary"`
}

// Summary condenses a run for logs, reports and the API.
type Summary struct {
	Scored          int                `json:"scored"`
	Skipped         int                `json:"skipped"`
	MeanComposite   float64            `json:"mean_composite"`
	MedianComposite float64            `json:"median_composite"`
	Components      []ComponentSummary `json:"components"`
	Ratings         []RatingCount      `json:"ratings"`
	Sectors         []SectorSummary    `json:"sectors,omitempty"`
}

// ComponentSummary is the distribution of one component across the
// ranked output, with its best symbol.
type ComponentSummary struct {
	Name        string  `json:"name"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Leader      string  `json:"leader,omitempty"`
	LeaderScore float64 `json:"leader_score,omitempty"`
}

// RatingCount is the population of one rating bucket, in ladder order.
type RatingCount struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

// SectorSummary aggregates composites per sector.
type SectorSummary struct {
	Sector        string  `json:"sector"`
	Count         int     `json:"count"`
	MeanComposite float64 `json:"mean_composite"`
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// median works on a copy, callers keep their ordering.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
