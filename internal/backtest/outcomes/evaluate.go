// Package outcomes grades recorded signals against later price history,
// producing the realized returns and stop/target hit flags the learning
// pass trains on.
package outcomes

import (
	"time"

	"github.com/sawpanic/leveledge/internal/models"
)

// Horizons are the grading windows in trading bars.
var Horizons = []int{20, 60, 90}

// Evaluation is the realized outcome of one signal at one horizon.
type Evaluation struct {
	HorizonDays int     `json:"horizon_days"`
	ReturnPct   float64 `json:"return_pct"`
	HitTarget   bool    `json:"hit_tp"`
	HitStop     bool    `json:"hit_stop"`
	MFEPct      float64 `json:"mfe_pct"`
	MAEPct      float64 `json:"mae_pct"`
}

// Evaluate grades a signal taken at asOf against the bar series. The
// entry bar is the one nearest asOf; horizons are in bar offsets, not
// calendar days. Returns false when the series has no bar near asOf or
// not enough future bars yet.
func Evaluate(bars []models.Bar, asOf time.Time, horizon int, stop, target float64) (Evaluation, bool) {
	entryIdx, ok := nearestIndex(bars, asOf)
	if !ok {
		return Evaluation{}, false
	}

	endIdx := entryIdx + horizon
	if endIdx >= len(bars) {
		return Evaluation{}, false // not enough future data yet
	}

	entryClose := bars[entryIdx].Close
	if entryClose <= 0 {
		return Evaluation{}, false
	}

	window := bars[entryIdx : endIdx+1]
	endClose := window[len(window)-1].Close

	maxHigh, minLow := window[0].High, window[0].Low
	hitStop, hitTarget := false, false
	for _, b := range window {
		if b.High > maxHigh {
			maxHigh = b.High
		}
		if b.Low < minLow {
			minLow = b.Low
		}
		if stop > 0 && b.Low <= stop {
			hitStop = true
		}
		if target > 0 && b.High >= target {
			hitTarget = true
		}
	}

	return Evaluation{
		HorizonDays: horizon,
		ReturnPct:   (endClose/entryClose - 1.0) * 100.0,
		HitTarget:   hitTarget,
		HitStop:     hitStop,
		MFEPct:      (maxHigh/entryClose - 1.0) * 100.0,
		MAEPct:      (minLow/entryClose - 1.0) * 100.0,
	}, true
}

func nearestIndex(bars []models.Bar, ts time.Time) (int, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	best := 0
	bestDiff := absDuration(bars[0].Timestamp.Sub(ts))
	for i := 1; i < len(bars); i++ {
		diff := absDuration(bars[i].Timestamp.Sub(ts))
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
