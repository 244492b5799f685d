package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	running          *prometheus.GaugeVec
	triggersRejected *prometheus.CounterVec
	aggDuration      *prometheus.HistogramVec
	droppedRecords   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfin_collection_runs_total",
				Help: "Total number of collection runs by category, trigger source and outcome",
			},
			[]string{"category", "source", "outcome"},
		),
		runDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xfin_collection_run_duration_seconds",
				Help:    "Duration of collection runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		running: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xfin_collection_running",
				Help: "Whether a collection run is in flight for a category (0 or 1)",
			},
			[]string{"category"},
		),
		triggersRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfin_manual_triggers_rejected_total",
				Help: "Manual triggers rejected because a run was already in flight",
			},
			[]string{"category"},
		),
		aggDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xfin_movers_aggregation_duration_seconds",
				Help:    "Duration of movers aggregation requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scope"},
		),
		droppedRecords: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfin_movers_dropped_records_total",
				Help: "Mover records dropped during field resolution",
			},
			[]string{"section"},
		),
	}
}

// RecordRun records a finished collection run.
func (r *Recorder) RecordRun(category, source, outcome string) {
	r.runsTotal.WithLabelValues(category, source, outcome).Inc()
}

// RecordRunDuration records how long a collection run took.
func (r *Recorder) RecordRunDuration(category string, seconds float64) {
	r.runDuration.WithLabelValues(category).Observe(seconds)
}

// RecordRunning flips the in-flight gauge for a category.
func (r *Recorder) RecordRunning(category string, running bool) {
	v := 0.0
	if running {
		v = 1.0
	}
	r.running.WithLabelValues(category).Set(v)
}

// RecordTriggerRejected counts a rejected manual trigger.
func (r *Recorder) RecordTriggerRejected(category string) {
	r.triggersRejected.WithLabelValues(category).Inc()
}

// RecordAggregation records movers aggregation latency.
func (r *Recorder) RecordAggregation(scope string, seconds float64) {
	r.aggDuration.WithLabelValues(scope).Observe(seconds)
}

// RecordDroppedRecords counts records dropped by the normalization layer.
func (r *Recorder) RecordDroppedRecords(section string, n int) {
	if n <= 0 {
		return
	}
	r.droppedRecords.WithLabelValues(section).Add(float64(n))
}
