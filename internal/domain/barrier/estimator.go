// Package barrier estimates first-touch probabilities for a pair of
// price barriers by counting outcomes over historical windows. Works from
// OHLCV alone; no outcomes table required.
package barrier

import (
	"sort"

	"github.com/sawpanic/leveledge/internal/models"
)

// minHistorySlack is the extra history required beyond the lookahead
// before estimates are trusted at all.
const minHistorySlack = 50

// Odds holds barrier-touch probabilities over the sampled windows. The
// four probabilities sum to 1 across the sample set; Samples is the
// number of windows counted.
type Odds struct {
	PUp     float64 `json:"p_up"`
	PDown   float64 `json:"p_down"`
	PChop   float64 `json:"p_chop"`
	PBoth   float64 `json:"p_both"`
	Samples int     `json:"n_samples"`
}

// degenerate is returned on insufficient history: all mass on chop,
// zero samples, so downstream confidence collapses to zero.
func degenerate() Odds {
	return Odds{PChop: 1.0}
}

// Estimate counts barrier touches over stride-sampled historical
// windows of `lookahead` bars. Windows that touch both barriers count as
// "both" (ambiguous ordering), then up-only, down-only, neither.
func Estimate(bars []models.Bar, up, dn float64, lookahead, stride int) Odds {
	if len(bars) < lookahead+minHistorySlack {
		return degenerate()
	}
	if stride < 1 {
		stride = 1
	}

	var upHits, dnHits, both, neither int
	lastStart := len(bars) - lookahead - 2
	for i := 0; i < lastStart; i += stride {
		touchedUp, touchedDown := touchesInWindow(bars, i, lookahead, up, dn)
		switch {
		case touchedUp && touchedDown:
			both++
		case touchedUp:
			upHits++
		case touchedDown:
			dnHits++
		default:
			neither++
		}
	}

	n := upHits + dnHits + both + neither
	if n == 0 {
		return degenerate()
	}

	fn := float64(n)
	return Odds{
		PUp:     float64(upHits) / fn,
		PDown:   float64(dnHits) / fn,
		PChop:   float64(neither) / fn,
		PBoth:   float64(both) / fn,
		Samples: n,
	}
}

func touchesInWindow(bars []models.Bar, start, lookahead int, up, dn float64) (touchedUp, touchedDown bool) {
	end := start + 1 + lookahead
	if end > len(bars) {
		end = len(bars)
	}
	for _, b := range bars[start+1 : end] {
		if b.High >= up {
			touchedUp = true
		}
		if b.Low <= dn {
			touchedDown = true
		}
		if touchedUp && touchedDown {
			return true, true
		}
	}
	return touchedUp, touchedDown
}

// MoveStats summarizes the historical distribution of maximum up/down
// excursions (as fractions of the starting close) over the lookahead.
// Used to synthesize a barrier when only one side of structure exists.
type MoveStats struct {
	MeanUpPct     float64 `json:"e_up_pct"`
	MeanDownPct   float64 `json:"e_down_pct"`
	MedianUpPct   float64 `json:"p50_up_pct"`
	MedianDownPct float64 `json:"p50_down_pct"`
}

// ExpectedMoves computes the excursion distribution over the same
// stride-sampled windows as Estimate. Insufficient history yields the
// zero value.
func ExpectedMoves(bars []models.Bar, lookahead, stride int) MoveStats {
	if len(bars) < lookahead+minHistorySlack {
		return MoveStats{}
	}
	if stride < 1 {
		stride = 1
	}

	var ups, downs []float64
	lastStart := len(bars) - lookahead - 2
	for i := 0; i < lastStart; i += stride {
		start := bars[i].Close
		if start <= 0 {
			continue
		}
		end := i + 1 + lookahead
		if end > len(bars) {
			end = len(bars)
		}
		hi, lo := bars[i+1].High, bars[i+1].Low
		for _, b := range bars[i+1 : end] {
			if b.High > hi {
				hi = b.High
			}
			if b.Low < lo {
				lo = b.Low
			}
		}
		ups = append(ups, hi/start-1.0)
		downs = append(downs, 1.0-lo/start)
	}

	if len(ups) == 0 || len(downs) == 0 {
		return MoveStats{}
	}
	return MoveStats{
		MeanUpPct:     mean(ups),
		MeanDownPct:   mean(downs),
		MedianUpPct:   median(ups),
		MedianDownPct: median(downs),
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := append([]float64{}, xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}
