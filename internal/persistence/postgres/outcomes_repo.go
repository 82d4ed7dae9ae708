package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/leveledge/internal/persistence"
)

// outcomesRepo implements OutcomesRepo for PostgreSQL
type outcomesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOutcomesRepo creates a new PostgreSQL outcomes repository
func NewOutcomesRepo(db *sqlx.DB, timeout time.Duration) persistence.OutcomesRepo {
	return &outcomesRepo{
		db:      db,
		timeout: timeout,
	}
}

// InsertSignal records a scored signal for later outcome grading
func (r *outcomesRepo) InsertSignal(ctx context.Context, s persistence.Signal) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whyJSON, err := json.Marshal(s.Why)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal why trail: %w", err)
	}

	query := `
		INSERT INTO signals (run_id, ticker, as_of, entry, stop, target, probability, bucket_key, rr_band, why)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err = r.db.QueryRowxContext(ctx, query,
		s.RunID, s.Ticker, s.AsOf, s.Entry, s.Stop, s.Target,
		s.Probability, s.BucketKey, s.RRBand, whyJSON).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, fmt.Errorf("duplicate signal: %w", err)
		}
		return 0, fmt.Errorf("failed to insert signal: %w", err)
	}

	return id, nil
}

// ListPendingSignals returns signals old enough to grade that have no
// outcomes recorded yet
func (r *outcomesRepo) ListPendingSignals(ctx context.Context, before time.Time, limit int) ([]persistence.Signal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT s.id, s.run_id, s.ticker, s.as_of, s.entry, s.stop, s.target,
		       s.probability, s.bucket_key, s.rr_band, s.why, s.created_at
		FROM signals s
		WHERE s.as_of <= $1
		  AND NOT EXISTS (SELECT 1 FROM outcomes o WHERE o.signal_id = s.id)
		ORDER BY s.as_of ASC
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending signals: %w", err)
	}
	defer rows.Close()

	var signals []persistence.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

// InsertOutcomes adds graded outcomes atomically
func (r *outcomesRepo) InsertOutcomes(ctx context.Context, outcomes []persistence.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (signal_id, horizon_days, return_pct, hit_tp, hit_stop, mfe_pct, mae_pct)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		_, err := stmt.ExecContext(ctx,
			o.SignalID, o.HorizonDays, o.ReturnPct, o.HitTarget, o.HitStop, o.MFEPct, o.MAEPct)
		if err != nil {
			return fmt.Errorf("failed to insert outcome for signal %d: %w", o.SignalID, err)
		}
	}

	return tx.Commit()
}

// ListRecentOutcomes returns the latest graded outcomes with their
// originating signals, newest first. The two slices are parallel.
func (r *outcomesRepo) ListRecentOutcomes(ctx context.Context, limit int) ([]persistence.Outcome, []persistence.Signal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT o.id, o.signal_id, o.horizon_days, o.return_pct, o.hit_tp, o.hit_stop,
		       o.mfe_pct, o.mae_pct, o.created_at,
		       s.id, s.run_id, s.ticker, s.as_of, s.entry, s.stop, s.target,
		       s.probability, s.bucket_key, s.rr_band, s.why, s.created_at
		FROM outcomes o
		JOIN signals s ON s.id = o.signal_id
		ORDER BY o.created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list recent outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []persistence.Outcome
	var signals []persistence.Signal
	for rows.Next() {
		var o persistence.Outcome
		var s persistence.Signal
		var whyJSON []byte
		err := rows.Scan(
			&o.ID, &o.SignalID, &o.HorizonDays, &o.ReturnPct, &o.HitTarget, &o.HitStop,
			&o.MFEPct, &o.MAEPct, &o.CreatedAt,
			&s.ID, &s.RunID, &s.Ticker, &s.AsOf, &s.Entry, &s.Stop, &s.Target,
			&s.Probability, &s.BucketKey, &s.RRBand, &whyJSON, &s.CreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan outcome row: %w", err)
		}
		if len(whyJSON) > 0 {
			if err := json.Unmarshal(whyJSON, &s.Why); err != nil {
				return nil, nil, fmt.Errorf("failed to unmarshal why trail: %w", err)
			}
		}
		outcomes = append(outcomes, o)
		signals = append(signals, s)
	}
	return outcomes, signals, rows.Err()
}

// BucketStats returns the empirical win record for a state bucket and
// reward:risk band. A win is an outcome that hit the target without
// first being knocked out at the stop.
func (r *outcomesRepo) BucketStats(ctx context.Context, bucketKey, rrBand string) (persistence.BucketStats, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COUNT(*) FILTER (WHERE o.hit_tp AND NOT o.hit_stop) AS wins,
		       COUNT(*) AS total
		FROM outcomes o
		JOIN signals s ON s.id = o.signal_id
		WHERE s.bucket_key = $1 AND s.rr_band = $2`

	var stats persistence.BucketStats
	err := r.db.QueryRowxContext(ctx, query, bucketKey, rrBand).Scan(&stats.Wins, &stats.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.BucketStats{}, nil
		}
		return persistence.BucketStats{}, fmt.Errorf("failed to query bucket stats: %w", err)
	}
	return stats, nil
}

func scanSignal(rows *sqlx.Rows) (persistence.Signal, error) {
	var s persistence.Signal
	var whyJSON []byte
	err := rows.Scan(
		&s.ID, &s.RunID, &s.Ticker, &s.AsOf, &s.Entry, &s.Stop, &s.Target,
		&s.Probability, &s.BucketKey, &s.RRBand, &whyJSON, &s.CreatedAt)
	if err != nil {
		return s, fmt.Errorf("failed to scan signal row: %w", err)
	}
	if len(whyJSON) > 0 {
		if err := json.Unmarshal(whyJSON, &s.Why); err != nil {
			return s, fmt.Errorf("failed to unmarshal why trail: %w", err)
		}
	}
	return s, nil
}
