package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/leveledge/internal/application/pipeline"
)

// MetricsRegistry holds all Prometheus metrics for LevelEdge
type MetricsRegistry struct {
	// Step duration metrics
	StepDuration *prometheus.HistogramVec

	// Cache performance metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Pipeline performance metrics
	PipelineErrors *prometheus.CounterVec

	// System metrics
	ActiveScans prometheus.Gauge
	TotalScans  prometheus.Counter

	// Decision metrics
	WhaleVerdicts *prometheus.CounterVec
	Probability   *prometheus.HistogramVec
}

// NewMetricsRegistry creates a new metrics registry with all LevelEdge metrics
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leveledge_step_duration_seconds",
				Help:    "Duration of each pipeline step in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"step", "result"},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leveledge_cache_hits_total",
				Help: "Total number of history cache hits",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leveledge_cache_misses_total",
				Help: "Total number of history cache misses",
			},
		),

		PipelineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leveledge_pipeline_errors_total",
				Help: "Total number of pipeline errors by step",
			},
			[]string{"step", "error_type"},
		),

		ActiveScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "leveledge_active_scans",
				Help: "Number of currently active scans",
			},
		),

		TotalScans: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leveledge_scans_total",
				Help: "Total number of scans initiated",
			},
		),

		WhaleVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leveledge_whale_verdicts_total",
				Help: "Total whale validation verdicts by type",
			},
			[]string{"verdict"},
		),

		Probability: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leveledge_decision_probability",
				Help:    "Distribution of final decision probabilities",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.98},
			},
			[]string{"stage"},
		),
	}

	// Register all metrics with Prometheus
	prometheus.MustRegister(
		registry.StepDuration,
		registry.CacheHits,
		registry.CacheMisses,
		registry.PipelineErrors,
		registry.ActiveScans,
		registry.TotalScans,
		registry.WhaleVerdicts,
		registry.Probability,
	)

	return registry
}

// StepTimer tracks execution time for pipeline steps
type StepTimer struct {
	metrics *MetricsRegistry
	step    string
	start   time.Time
}

// StartStepTimer begins timing a pipeline step
func (m *MetricsRegistry) StartStepTimer(step string) *StepTimer {
	return &StepTimer{
		metrics: m,
		step:    step,
		start:   time.Now(),
	}
}

// Stop completes the step timing and records the metric
func (st *StepTimer) Stop(result string) {
	duration := time.Since(st.start)
	st.metrics.StepDuration.WithLabelValues(st.step, result).Observe(duration.Seconds())

	log.Debug().
		Str("step", st.step).
		Str("result", result).
		Dur("duration", duration).
		Msg("Pipeline step completed")
}

// CacheHit records a history cache hit
func (m *MetricsRegistry) CacheHit() {
	m.CacheHits.Inc()
}

// CacheMiss records a history cache miss
func (m *MetricsRegistry) CacheMiss() {
	m.CacheMisses.Inc()
}

// RecordPipelineError records a pipeline error
func (m *MetricsRegistry) RecordPipelineError(step, errorType string) {
	m.PipelineErrors.WithLabelValues(step, errorType).Inc()
	log.Warn().
		Str("step", step).
		Str("error_type", errorType).
		Msg("Pipeline error recorded")
}

// RecordVerdict records a whale validation verdict
func (m *MetricsRegistry) RecordVerdict(verdict string) {
	m.WhaleVerdicts.WithLabelValues(verdict).Inc()
}

// RecordProbability records a decision probability at the named stage
func (m *MetricsRegistry) RecordProbability(stage string, p float64) {
	m.Probability.WithLabelValues(stage).Observe(p)
}

// ObserveDecisions records one completed scan cycle: the scan counter,
// the whale verdict per decision, and the base/final probability
// distributions.
func (m *MetricsRegistry) ObserveDecisions(results []pipeline.DecisionRecord) {
	m.TotalScans.Inc()
	for _, r := range results {
		m.RecordVerdict(r.Whale.Verdict.String())
		m.RecordProbability("base", r.Base.Probability)
		m.RecordProbability("final", r.FinalProbability)
	}
}
