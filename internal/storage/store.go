// Package storage persists finished scoring runs to Postgres so past
// rankings stay queryable after the process exits.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwhitfield/alphascore/internal/features"
	"github.com/mwhitfield/alphascore/internal/pipeline"
	"github.com/mwhitfield/alphascore/pkg/logger"
)

// ErrNotFound is returned when no stored run matches the query.
var ErrNotFound = errors.New("run not found")

// Store implements run history on a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// New creates a run history store on the given pool.
func New(pool *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: log.WithField("module", "storage"),
	}
}

// RunInfo is one row of run history, without the per-symbol payload.
type RunInfo struct {
	ID           int64         `json:"id"`
	ModelID      string        `json:"model_id"`
	ModelVersion string        `json:"model_version"`
	ConfigHash   string        `json:"config_hash"`
	UniverseID   string        `json:"universe_id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Scored       int           `json:"scored"`
	Skipped      int           `json:"skipped"`
}

// SaveRun writes a run with all results and skips in one transaction
// and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, run *pipeline.RunResult) (int64, error) {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return 0, fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO score_runs (
			model_id, model_version, config_hash, universe_id,
			started_at, duration_ms, scored, skipped, summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		run.ModelID, run.ModelVersion, run.ConfigHash, run.UniverseID,
		run.StartedAt, run.Duration.Milliseconds(),
		run.Summary.Scored, run.Summary.Skipped, summaryJSON,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	for i := range run.Results {
		if err := insertResult(ctx, tx, runID, &run.Results[i]); err != nil {
			return 0, err
		}
	}

	for _, sk := range run.Skipped {
		_, err := tx.Exec(ctx, `
			INSERT INTO score_skips (run_id, symbol, reason)
			VALUES ($1, $2, $3)
		`, runID, sk.Symbol, sk.Reason)
		if err != nil {
			return 0, fmt.Errorf("insert skip for %s: %w", sk.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"model":  run.ModelID,
		"scored": run.Summary.Scored,
	}).Info("Run saved")

	return runID, nil
}

func insertResult(ctx context.Context, tx pgx.Tx, runID int64, res *pipeline.CompositeResult) error {
	componentsJSON, err := json.Marshal(res.Components)
	if err != nil {
		return fmt.Errorf("marshal components for %s: %w", res.Symbol, err)
	}

	var featuresJSON []byte
	if res.Features != nil {
		featuresJSON, err = json.Marshal(res.Features)
		if err != nil {
			return fmt.Errorf("marshal features for %s: %w", res.Symbol, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO score_results (
			run_id, rank, symbol, name, sector, composite,
			rating, confidence, bar_count, as_of, components, features
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		runID, res.Rank, res.Symbol, res.Name, res.Sector, res.Composite,
		res.Rating, string(res.Confidence), res.BarCount, res.AsOf,
		componentsJSON, featuresJSON,
	)
	if err != nil {
		return fmt.Errorf("insert result for %s: %w", res.Symbol, err)
	}
	return nil
}

// LatestRun loads the most recent stored run. An empty modelID matches
// any model.
func (s *Store) LatestRun(ctx context.Context, modelID string) (*pipeline.RunResult, error) {
	query := `
		SELECT id, model_id, model_version, config_hash, universe_id,
		       started_at, duration_ms, summary
		FROM score_runs
	`
	args := []any{}
	if modelID != "" {
		query += ` WHERE model_id = $1`
		args = append(args, modelID)
	}
	query += ` ORDER BY started_at DESC LIMIT 1`

	var (
		runID       int64
		run         pipeline.RunResult
		durationMS  int64
		summaryJSON []byte
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&runID, &run.ModelID, &run.ModelVersion, &run.ConfigHash,
		&run.UniverseID, &run.StartedAt, &durationMS, &summaryJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	if run.Results, err = s.loadResults(ctx, runID); err != nil {
		return nil, err
	}
	if run.Skipped, err = s.loadSkips(ctx, runID); err != nil {
		return nil, err
	}

	return &run, nil
}

func (s *Store) loadResults(ctx context.Context, runID int64) ([]pipeline.CompositeResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rank, symbol, name, sector, composite, rating,
		       confidence, bar_count, as_of, components, features
		FROM score_results
		WHERE run_id = $1
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []pipeline.CompositeResult
	for rows.Next() {
		var (
			res            pipeline.CompositeResult
			confidence     string
			componentsJSON []byte
			featuresJSON   []byte
		)
		err := rows.Scan(
			&res.Rank, &res.Symbol, &res.Name, &res.Sector, &res.Composite,
			&res.Rating, &confidence, &res.BarCount, &res.AsOf,
			&componentsJSON, &featuresJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		res.Confidence = features.Confidence(confidence)
		if err := json.Unmarshal(componentsJSON, &res.Components); err != nil {
			return nil, fmt.Errorf("unmarshal components for %s: %w", res.Symbol, err)
		}
		if len(featuresJSON) > 0 {
			var vec features.Vector
			if err := json.Unmarshal(featuresJSON, &vec); err != nil {
				return nil, fmt.Errorf("unmarshal features for %s: %w", res.Symbol, err)
			}
			res.Features = &vec
		}

		results = append(results, res)
	}
	return results, rows.Err()
}

func (s *Store) loadSkips(ctx context.Context, runID int64) ([]pipeline.SkippedSymbol, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, reason
		FROM score_skips
		WHERE run_id = $1
		ORDER BY symbol ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query skips: %w", err)
	}
	defer rows.Close()

	var skips []pipeline.SkippedSymbol
	for rows.Next() {
		var sk pipeline.SkippedSymbol
		if err := rows.Scan(&sk.Symbol, &sk.Reason); err != nil {
			return nil, fmt.Errorf("scan skip: %w", err)
		}
		skips = append(skips, sk)
	}
	return skips, rows.Err()
}

// ListRuns returns run history headers, newest first. An empty modelID
// matches any model; limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, modelID string, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, model_id, model_version, config_hash, universe_id,
		       started_at, duration_ms, scored, skipped
		FROM score_runs
	`
	args := []any{}
	if modelID != "" {
		query += ` WHERE model_id = $1`
		args = append(args, modelID)
	}
	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var (
			info       RunInfo
			durationMS int64
		)
		err := rows.Scan(
			&info.ID, &info.ModelID, &info.ModelVersion, &info.ConfigHash,
			&info.UniverseID, &info.StartedAt, &durationMS,
			&info.Scored, &info.Skipped,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		info.Duration = time.Duration(durationMS) * time.Millisecond
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteRunsBefore removes runs older than the cutoff and returns how
// many were deleted. Results and skips cascade.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM score_runs WHERE started_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
