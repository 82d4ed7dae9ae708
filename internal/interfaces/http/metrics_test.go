package http

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sawpanic/leveledge/internal/application/pipeline"
	"github.com/sawpanic/leveledge/internal/domain/whale"
	"github.com/sawpanic/leveledge/internal/score"
)

// The registry binds to the default Prometheus registerer, so it is
// constructed once and every instrument is exercised here.
func TestMetricsRegistryInstruments(t *testing.T) {
	m := NewMetricsRegistry()

	m.ObserveDecisions([]pipeline.DecisionRecord{
		{
			Ticker:           "NVDA",
			Base:             score.Decision{Probability: 0.74},
			Whale:            whale.Result{Verdict: whale.Confirm},
			FinalProbability: 0.68,
		},
		{
			Ticker:           "AMD",
			Base:             score.Decision{Probability: 0.40},
			Whale:            whale.Result{Verdict: whale.Deny},
			FinalProbability: 0.22,
		},
	})

	if got := testutil.ToFloat64(m.TotalScans); got != 1 {
		t.Errorf("scans total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WhaleVerdicts.WithLabelValues("CONFIRM")); got != 1 {
		t.Errorf("CONFIRM verdicts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WhaleVerdicts.WithLabelValues("DENY")); got != 1 {
		t.Errorf("DENY verdicts = %v, want 1", got)
	}
	// One probability series per stage.
	if got := testutil.CollectAndCount(m.Probability); got != 2 {
		t.Errorf("probability series = %d, want base and final", got)
	}

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	if got := testutil.ToFloat64(m.CacheHits); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}

	m.ActiveScans.Inc()
	if got := testutil.ToFloat64(m.ActiveScans); got != 1 {
		t.Errorf("active scans = %v, want 1", got)
	}
	m.ActiveScans.Dec()
	if got := testutil.ToFloat64(m.ActiveScans); got != 0 {
		t.Errorf("active scans after decrement = %v, want 0", got)
	}

	timer := m.StartStepTimer("scan")
	timer.Stop("ok")
	if got := testutil.CollectAndCount(m.StepDuration); got != 1 {
		t.Errorf("step duration series = %d, want 1", got)
	}

	m.RecordPipelineError("board", "history_fetch")
	if got := testutil.ToFloat64(m.PipelineErrors.WithLabelValues("board", "history_fetch")); got != 1 {
		t.Errorf("pipeline errors = %v, want 1", got)
	}
}
