package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the signals and outcomes tables if absent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          BIGSERIAL PRIMARY KEY,
			run_id      TEXT NOT NULL,
			ticker      TEXT NOT NULL,
			as_of       TIMESTAMPTZ NOT NULL,
			entry       DOUBLE PRECISION NOT NULL,
			stop        DOUBLE PRECISION NOT NULL,
			target      DOUBLE PRECISION NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			bucket_key  TEXT NOT NULL,
			rr_band     TEXT NOT NULL,
			why         JSONB,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (run_id, ticker, as_of)
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id           BIGSERIAL PRIMARY KEY,
			signal_id    BIGINT NOT NULL REFERENCES signals(id),
			horizon_days INT NOT NULL,
			return_pct   DOUBLE PRECISION NOT NULL,
			hit_tp       BOOLEAN NOT NULL,
			hit_stop     BOOLEAN NOT NULL,
			mfe_pct      DOUBLE PRECISION NOT NULL,
			mae_pct      DOUBLE PRECISION NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (signal_id, horizon_days)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_bucket ON signals (bucket_key, rr_band)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_signal ON outcomes (signal_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
