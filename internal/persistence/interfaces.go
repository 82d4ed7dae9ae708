// Package persistence defines the storage interfaces the pipeline's
// collaborators implement. The core never imports this package; it
// receives lookups as injected functions.
package persistence

import (
	"context"
	"time"
)

// Signal is a recorded decision awaiting outcome grading.
type Signal struct {
	ID          int64     `json:"id" db:"id"`
	RunID       string    `json:"run_id" db:"run_id"`
	Ticker      string    `json:"ticker" db:"ticker"`
	AsOf        time.Time `json:"as_of" db:"as_of"`
	Entry       float64   `json:"entry" db:"entry"`
	Stop        float64   `json:"stop" db:"stop"`
	Target      float64   `json:"target" db:"target"`
	Probability float64   `json:"probability" db:"probability"`
	BucketKey   string    `json:"bucket_key" db:"bucket_key"`
	RRBand      string    `json:"rr_band" db:"rr_band"`
	Why         []string  `json:"why" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RRBandFor buckets a reward:risk ratio so outcome statistics compare
// signals with similar geometry.
func RRBandFor(rr float64) string {
	switch {
	case rr >= 3.0:
		return "rr_gte_3"
	case rr >= 2.0:
		return "rr_2_3"
	case rr > 0:
		return "rr_lt_2"
	default:
		return "rr_none"
	}
}

// Outcome is a graded signal at one horizon.
type Outcome struct {
	ID          int64     `json:"id" db:"id"`
	SignalID    int64     `json:"signal_id" db:"signal_id"`
	HorizonDays int       `json:"horizon_days" db:"horizon_days"`
	ReturnPct   float64   `json:"return_pct" db:"return_pct"`
	HitTarget   bool      `json:"hit_tp" db:"hit_tp"`
	HitStop     bool      `json:"hit_stop" db:"hit_stop"`
	MFEPct      float64   `json:"mfe_pct" db:"mfe_pct"`
	MAEPct      float64   `json:"mae_pct" db:"mae_pct"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// BucketStats is the empirical win record for one state bucket and
// reward:risk band.
type BucketStats struct {
	Wins  int `db:"wins"`
	Total int `db:"total"`
}

// OutcomesRepo stores signals and their graded outcomes and answers the
// bucket win-rate queries behind the scoring engine's outcome lookup.
type OutcomesRepo interface {
	InsertSignal(ctx context.Context, s Signal) (int64, error)
	ListPendingSignals(ctx context.Context, before time.Time, limit int) ([]Signal, error)
	InsertOutcomes(ctx context.Context, outcomes []Outcome) error
	ListRecentOutcomes(ctx context.Context, limit int) ([]Outcome, []Signal, error)
	BucketStats(ctx context.Context, bucketKey, rrBand string) (BucketStats, error)
}
