package features

import (
	"math"
	"testing"
	"time"

	"github.com/sawpanic/leveledge/internal/models"
)

func series(n int, close func(i int) float64) []models.Bar {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := close(i)
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestComputeDegradedOnShortHistory(t *testing.T) {
	snap := NewEngine().Compute(series(30, func(i int) float64 { return 100 }))
	if !snap.Degraded {
		t.Error("30 bars should degrade")
	}
	if snap.Reason != "insufficient_history" {
		t.Errorf("reason = %q", snap.Reason)
	}
	if snap.Rows != 30 {
		t.Errorf("rows = %d", snap.Rows)
	}
}

func TestComputeTrendingSeries(t *testing.T) {
	// Monotonic rise: path length equals net change, efficiency 1.
	snap := NewEngine().Compute(series(100, func(i int) float64 { return 100 + float64(i) }))
	if snap.Degraded {
		t.Fatal("unexpected degraded snapshot")
	}
	if math.Abs(snap.TrendEff-1.0) > 1e-6 {
		t.Errorf("TrendEff = %v, want 1.0", snap.TrendEff)
	}
	if snap.RangePos < 0.95 {
		t.Errorf("RangePos = %v, want near the top of the range", snap.RangePos)
	}
	if snap.LastClose != 199 {
		t.Errorf("LastClose = %v", snap.LastClose)
	}
}

func TestComputeFlatSeries(t *testing.T) {
	snap := NewEngine().Compute(series(100, func(i int) float64 { return 100 }))
	if snap.Degraded {
		t.Fatal("unexpected degraded snapshot")
	}
	if snap.TrendEff != 0 {
		t.Errorf("flat TrendEff = %v, want 0", snap.TrendEff)
	}
	if snap.RV20 != 0 || snap.RV60 != 0 {
		t.Errorf("flat realized vol = %v/%v, want zeros", snap.RV20, snap.RV60)
	}
	if math.Abs(snap.VolZ) > 1e-6 {
		t.Errorf("constant volume VolZ = %v, want 0", snap.VolZ)
	}
}

func TestFeaturesBounded(t *testing.T) {
	snap := NewEngine().Compute(series(120, func(i int) float64 {
		return 100 + 5*math.Sin(float64(i)/7.0)
	}))
	bounded := map[string]float64{
		"RangePos":    snap.RangePos,
		"Compression": snap.Compression,
		"TrendEff":    snap.TrendEff,
		"Acceptance":  snap.Acceptance,
		"Wickiness":   snap.Wickiness,
		"VolZNorm":    snap.VolZNorm,
		"RVRatio":     snap.RVRatio,
	}
	for name, v := range bounded {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v escapes [0,1]", name, v)
		}
	}
	if snap.VolZ < -3 || snap.VolZ > 3 {
		t.Errorf("VolZ = %v escapes [-3,3]", snap.VolZ)
	}
}

func TestSnapshotMapPrefix(t *testing.T) {
	snap := NewEngine().Compute(series(80, func(i int) float64 { return 100 }))
	m := snap.Map("1d_")
	if len(m) != 10 {
		t.Errorf("map has %d keys, want 10", len(m))
	}
	if _, ok := m["1d_trend_eff"]; !ok {
		t.Error("prefixed key 1d_trend_eff missing")
	}
}
