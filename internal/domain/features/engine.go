// Package features converts an OHLCV series into bounded evidence
// features. Everything here is soft evidence, never a rule: continuous
// values, mostly normalized into [0,1] or clipped z-scores.
package features

import (
	"math"
	"sort"

	"github.com/sawpanic/leveledge/internal/models"
)

const (
	minBars = 50
	eps     = 1e-9
)

// Snapshot holds the latest-bar feature values for one resolution.
type Snapshot struct {
	RangePos    float64 `json:"range_pos"`
	Compression float64 `json:"compression"`
	TrendEff    float64 `json:"trend_eff"`
	VolZ        float64 `json:"vol_z"`
	RV20        float64 `json:"rv_20"`
	RV60        float64 `json:"rv_60"`
	Acceptance  float64 `json:"acceptance"`
	Wickiness   float64 `json:"wickiness"`
	VolZNorm    float64 `json:"vol_z_norm"`
	RVRatio     float64 `json:"rv_ratio"`

	Rows      int     `json:"rows"`
	LastClose float64 `json:"last_close"`
	Degraded  bool    `json:"degraded"`
	Reason    string  `json:"reason,omitempty"`
}

// Map flattens the snapshot for transparency output, with an optional
// resolution prefix for multi-timeframe stacking (e.g. "1d_").
func (s Snapshot) Map(prefix string) map[string]float64 {
	return map[string]float64{
		prefix + "range_pos":   s.RangePos,
		prefix + "compression": s.Compression,
		prefix + "trend_eff":   s.TrendEff,
		prefix + "vol_z":       s.VolZ,
		prefix + "rv_20":       s.RV20,
		prefix + "rv_60":       s.RV60,
		prefix + "acceptance":  s.Acceptance,
		prefix + "wickiness":   s.Wickiness,
		prefix + "vol_z_norm":  s.VolZNorm,
		prefix + "rv_ratio":    s.RVRatio,
	}
}

// Engine computes feature snapshots from bar series.
type Engine struct{}

// NewEngine creates a feature engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute derives the latest-bar feature snapshot. Fewer than 50 bars
// yields a degraded snapshot rather than an error.
func (e *Engine) Compute(bars []models.Bar) Snapshot {
	n := len(bars)
	if n < minBars {
		return Snapshot{Degraded: true, Reason: "insufficient_history", Rows: n}
	}

	last := bars[n-1]

	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, bars[i].Close/prev-1.0)
	}

	rv20 := stddev(tail(returns, 20))
	rv60 := stddev(tail(returns, 60))

	// Volume z-score over the trailing 20 bars.
	vols := make([]float64, 0, 20)
	for _, b := range bars[n-20:] {
		vols = append(vols, b.Volume)
	}
	vMean, vStd := meanStd(vols)
	volZ := clampF((last.Volume-vMean)/(vStd+eps), -3, 3)

	// Kaufman-style trend efficiency over 10 bars: net change vs path length.
	change := math.Abs(last.Close - bars[n-11].Close)
	noise := 0.0
	for i := n - 10; i < n; i++ {
		noise += math.Abs(bars[i].Close - bars[i-1].Close)
	}
	trendEff := clampF(change/(noise+eps), 0, 1)

	// Range compression: last true range vs 50-bar median.
	trs := make([]float64, 0, 50)
	for _, b := range bars[n-50:] {
		trs = append(trs, math.Abs(b.High-b.Low))
	}
	trLast := trs[len(trs)-1]
	compression := clampF(1.0-trLast/(median(trs)+eps), 0, 1)

	// Position inside the 50-bar range.
	rangeHigh, rangeLow := last.High, last.Low
	for _, b := range bars[n-50:] {
		rangeHigh = math.Max(rangeHigh, b.High)
		rangeLow = math.Min(rangeLow, b.Low)
	}
	rangePos := clampF((last.Close-rangeLow)/(rangeHigh-rangeLow+eps), 0, 1)

	// Acceptance: short-window dispersion shrinking vs the long window.
	acceptance := clampF(1.0-stddev(tail(returns, 20))/(stddev(tail(returns, 60))+eps), 0, 1)

	// Wickiness of the last bar: wick share of the true range.
	body := math.Abs(last.Close - last.Open)
	wick := (last.High - last.Low) - body
	wickiness := clampF(wick/(trLast+eps), 0, 1)

	return Snapshot{
		RangePos:    rangePos,
		Compression: compression,
		TrendEff:    trendEff,
		VolZ:        volZ,
		RV20:        rv20,
		RV60:        rv60,
		Acceptance:  acceptance,
		Wickiness:   wickiness,
		VolZNorm:    clampF((volZ+3.0)/6.0, 0, 1),
		RVRatio:     clampF((rv20/(rv60+eps))/2.0, 0, 1),
		Rows:        n,
		LastClose:   last.Close,
	}
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		std += (x - mean) * (x - mean)
	}
	std = math.Sqrt(std / float64(len(xs)))
	return mean, std
}

func stddev(xs []float64) float64 {
	_, std := meanStd(xs)
	return std
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64{}, xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

func clampF(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
