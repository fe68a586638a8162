package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/marketdata"
	"github.com/mwhitfield/alphascore/internal/modelconfig"
	"github.com/mwhitfield/alphascore/internal/scoring"
	"github.com/mwhitfield/alphascore/internal/universe"
	"github.com/mwhitfield/alphascore/pkg/logger"
	"github.com/mwhitfield/alphascore/pkg/metrics"
)

// Runner drives one scoring run end to end: fetch, extract, score,
// rank, summarize.
type Runner struct {
	provider  marketdata.Provider
	extractor *features.Extractor
	scorer    *scoring.Scorer
	metrics   *metrics.Recorder
	logger    *logger.Logger

	workers  int
	lookback int
}

// Config holds runner knobs.
type Config struct {
	Workers      int
	LookbackDays int
}

// NewRunner creates a new run orchestrator.
func NewRunner(
	provider marketdata.Provider,
	extractor *features.Extractor,
	scorer *scoring.Scorer,
	rec *metrics.Recorder,
	log *logger.Logger,
	cfg Config,
) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	lookback := cfg.LookbackDays
	if lookback < 1 {
		lookback = 400
	}

	return &Runner{
		provider:  provider,
		extractor: extractor,
		scorer:    scorer,
		metrics:   rec,
		logger:    log.WithField("module", "pipeline"),
		workers:   workers,
		lookback:  lookback,
	}
}

// symbolOutcome is what one worker produces for one universe entry.
// Exactly one of result or skipped is set.
type symbolOutcome struct {
	index   int
	result  *CompositeResult
	skipped *SkippedSymbol
}

// Run scores the whole universe against model. Per-symbol failures
// become skips; only a cancelled context or an unhashable model fail
// the run itself.
func (r *Runner) Run(ctx context.Context, model *modelconfig.Model, u *universe.Universe) (*RunResult, error) {
	started := time.Now()

	hash, err := modelconfig.Hash(model)
	if err != nil {
		return nil, fmt.Errorf("hash model: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"model":    model.Meta.ModelID,
		"universe": u.Meta.UniverseID,
		"symbols":  u.Len(),
		"workers":  r.workers,
	}).Info("Starting scoring run")

	jobCh := make(chan int, u.Len())
	outcomeCh := make(chan symbolOutcome, u.Len())

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, model, u, jobCh, outcomeCh)
		}(i)
	}

	for i := range u.Symbols {
		jobCh <- i
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	results := make([]CompositeResult, 0, u.Len())
	var skipped []SkippedSymbol
	for outcome := range outcomeCh {
		if outcome.result != nil {
			results = append(results, *outcome.result)
		} else if outcome.skipped != nil {
			skipped = append(skipped, *outcome.skipped)
			r.metrics.RecordSkip(model.Meta.ModelID, outcome.skipped.Reason)
		}
	}

	if err := ctx.Err(); err != nil {
		r.metrics.RecordRun(model.Meta.ModelID, "cancelled", time.Since(started).Seconds())
		return nil, err
	}

	// Completion order depends on worker scheduling; ranking must not.
	// Sort by composite descending, ties by universe position.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Composite != results[j].Composite {
			return results[i].Composite > results[j].Composite
		}
		return results[i].universePos < results[j].universePos
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	sort.Slice(skipped, func(i, j int) bool {
		return u.Position(skipped[i].Symbol) < u.Position(skipped[j].Symbol)
	})

	run := &RunResult{
		ModelID:      model.Meta.ModelID,
		ModelVersion: model.Meta.Version,
		ConfigHash:   hash,
		UniverseID:   u.Meta.UniverseID,
		StartedAt:    started.UTC(),
		Duration:     time.Since(started),
		Results:      results,
		Skipped:      skipped,
		Summary:      summarize(model, results, skipped),
	}

	r.metrics.RecordRun(model.Meta.ModelID, "ok", run.Duration.Seconds())
	r.metrics.SetSymbolsScored(model.Meta.ModelID, len(results))

	r.logger.WithFields(map[string]interface{}{
		"model":    model.Meta.ModelID,
		"scored":   len(results),
		"skipped":  len(skipped),
		"duration": run.Duration.String(),
	}).Info("Scoring run completed")

	return run, nil
}

func (r *Runner) worker(ctx context.Context, workerID int, model *modelconfig.Model, u *universe.Universe, jobCh <-chan int, outcomeCh chan<- symbolOutcome) {
	for idx := range jobCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entry := u.Symbols[idx]
		outcome := r.processSymbol(ctx, workerID, model, entry, idx)
		outcomeCh <- outcome
	}
}

func (r *Runner) processSymbol(ctx context.Context, workerID int, model *modelconfig.Model, entry universe.Entry, idx int) symbolOutcome {
	series, funds, err := r.provider.Fetch(ctx, entry.Symbol, r.lookback)
	if err != nil {
		r.metrics.RecordFetch(r.provider.Name(), "error")

		reason := ReasonFetchError
		if errors.Is(err, marketdata.ErrNoData) {
			reason = ReasonDataUnavailable
		}
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": entry.Symbol,
			"reason": reason,
		}).Warn("Symbol skipped at fetch")

		return symbolOutcome{index: idx, skipped: &SkippedSymbol{Symbol: entry.Symbol, Reason: reason}}
	}
	r.metrics.RecordFetch(r.provider.Name(), "ok")

	vector, err := r.extractor.Extract(series, funds)
	if err != nil {
		reason := ReasonFetchError
		if errors.Is(err, features.ErrInsufficientHistory) {
			reason = ReasonInsufficientHistory
		}
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": entry.Symbol,
			"bars":   series.Len(),
		}).Warn("Symbol skipped at extraction")

		return symbolOutcome{index: idx, skipped: &SkippedSymbol{Symbol: entry.Symbol, Reason: reason}}
	}

	scores, composite, rating := r.scorer.Aggregate(model, vector)

	result := &CompositeResult{
		Symbol:      entry.Symbol,
		Name:        entry.Name,
		Sector:      entry.Sector,
		Components:  scores,
		Composite:   composite,
		Rating:      rating,
		Confidence:  vector.Confidence,
		BarCount:    vector.BarCount,
		AsOf:        series.LastDate(),
		Features:    vector,
		universePos: idx,
	}
	if funds != nil {
		if result.Name == "" {
			result.Name = funds.Name
		}
		if result.Sector == "" {
			result.Sector = funds.Sector
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"worker":    workerID,
		"symbol":    entry.Symbol,
		"composite": composite,
		"rating":    rating,
	}).Debug("Scored symbol")

	return symbolOutcome{index: idx, result: result}
}

// summarize builds the run digest: composite distribution, component
// distributions with leaders, rating buckets in ladder order, sector
// aggregates.
func summarize(model *modelconfig.Model, results []CompositeResult, skipped []SkippedSymbol) Summary {
	s := Summary{
		Scored:  len(results),
		Skipped: len(skipped),
	}
	if len(results) == 0 {
		return s
	}

	composites := make([]float64, len(results))
	for i, res := range results {
		composites[i] = res.Composite
	}
	s.MeanComposite = mean(composites)
	s.MedianComposite = median(composites)

	for _, name := range model.ComponentNames() {
		cs := ComponentSummary{Name: name}

		values := make([]float64, 0, len(results))
		for _, res := range results {
			score, ok := res.Component(name)
			if !ok {
				continue
			}
			values = append(values, score)
			// Results arrive ranked, so strict-greater keeps the
			// best-ranked symbol on ties.
			if cs.Leader == "" || score > cs.LeaderScore {
				cs.Leader = res.Symbol
				cs.LeaderScore = score
			}
		}
		cs.Mean = mean(values)
		cs.Median = median(values)
		s.Components = append(s.Components, cs)
	}

	counts := make(map[string]int, len(model.Ratings))
	for _, res := range results {
		counts[res.Rating]++
	}
	for _, r := range model.Ratings {
		s.Ratings = append(s.Ratings, RatingCount{Rating: r.Label, Count: counts[r.Label]})
	}

	type sectorAcc struct {
		count int
		sum   float64
	}
	sectors := make(map[string]*sectorAcc)
	for _, res := range results {
		sector := res.Sector
		if sector == "" {
			sector = "Unknown"
		}
		acc, ok := sectors[sector]
		if !ok {
			acc = &sectorAcc{}
			sectors[sector] = acc
		}
		acc.count++
		acc.sum += res.Composite
	}

	names := make([]string, 0, len(sectors))
	for name := range sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		acc := sectors[name]
		s.Sectors = append(s.Sectors, SectorSummary{
			Sector:        name,
			Count:         acc.count,
			MeanComposite: acc.sum / float64(acc.count),
		})
	}

	return s
}
