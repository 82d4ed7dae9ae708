package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/leveledge/internal/persistence"
	"github.com/sawpanic/leveledge/internal/score"
)

// lookupMinSamples is the floor below which a bucket's record is too
// thin to quote a probability from.
const lookupMinSamples = 5

// NewOutcomeLookup adapts the outcomes repository into the scoring
// engine's historical lookup. Queries run against the live connection
// with the repository's timeout; a failed or thin query reports ok=false
// so the engine falls back to its prior.
func NewOutcomeLookup(repo persistence.OutcomesRepo) score.OutcomeLookup {
	return func(bucket score.StateBucket, entry, target, stop float64) (float64, int, []string, bool) {
		rr := 0.0
		if risk := entry - stop; risk > 0 {
			rr = (target - entry) / risk
		}
		band := persistence.RRBandFor(rr)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stats, err := repo.BucketStats(ctx, bucket.Key(), band)
		if err != nil {
			log.Warn().Err(err).Str("bucket", bucket.Key()).Msg("Bucket stats query failed, falling back to prior")
			return 0, 0, nil, false
		}
		if stats.Total < lookupMinSamples {
			return 0, stats.Total, nil, false
		}

		prob := float64(stats.Wins) / float64(stats.Total)
		if prob < 0.01 {
			prob = 0.01
		} else if prob > 0.99 {
			prob = 0.99
		}

		why := []string{
			fmt.Sprintf("bucket %s: %d/%d wins in band %s", bucket, stats.Wins, stats.Total, band),
		}
		return prob, stats.Total, why, true
	}
}
