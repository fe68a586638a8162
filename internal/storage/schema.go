package storage

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS score_runs (
	id            BIGSERIAL PRIMARY KEY,
	model_id      TEXT NOT NULL,
	model_version TEXT NOT NULL,
	config_hash   TEXT NOT NULL,
	universe_id   TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	scored        INT NOT NULL,
	skipped       INT NOT NULL,
	summary       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_score_runs_model_started
	ON score_runs (model_id, started_at DESC);

CREATE TABLE IF NOT EXISTS score_results (
	run_id     BIGINT NOT NULL REFERENCES score_runs(id) ON DELETE CASCADE,
	rank       INT NOT NULL,
	symbol     TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	sector     TEXT NOT NULL DEFAULT '',
	composite  DOUBLE PRECISION NOT NULL,
	rating     TEXT NOT NULL,
	confidence TEXT NOT NULL,
	bar_count  INT NOT NULL,
	as_of      DATE NOT NULL,
	components JSONB NOT NULL,
	features   JSONB,
	PRIMARY KEY (run_id, symbol)
);

CREATE INDEX IF NOT EXISTS idx_score_results_run_rank
	ON score_results (run_id, rank);

CREATE TABLE IF NOT EXISTS score_skips (
	run_id BIGINT NOT NULL REFERENCES score_runs(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, symbol)
);
`

// EnsureSchema creates the run history tables when they do not exist.
// Idempotent, safe to call on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
