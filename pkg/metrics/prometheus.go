// Package metrics provides Prometheus metrics for the fairway pricing
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pricing run metrics
	pricingRuns        prometheus.Counter
	pricingRunDuration prometheus.Histogram
	golfersPriced      prometheus.Gauge
	rankInversions     prometheus.Counter
	overCapRosters     prometheus.Gauge

	// Recomputation metrics
	recomputeRuns         prometheus.Counter
	recomputeMatchedRows  prometheus.Counter
	recomputeFallbackRows prometheus.Counter
	recomputePointDrift   prometheus.Gauge

	// Store metrics
	storeSnapshotDuration prometheus.Histogram
	storeWriteDuration    prometheus.Histogram
	storeErrors           prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "pricing",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pricingRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed pricing runs",
	})

	m.pricingRunDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of end-to-end pricing run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.golfersPriced = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "golfers_priced",
		Help:      "Number of golfers priced in the most recent run",
	})

	m.rankInversions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_inversions_total",
		Help:      "Total rank inversions reported across pricing runs (pricing-integrity signal)",
	})

	m.overCapRosters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "over_cap_rosters",
		Help:      "Rosters above the salary cap after the most recent run",
	})

	m.recomputeRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "recompute",
		Name:      "runs_total",
		Help:      "Total number of recomputation runs, preview and apply combined",
	})

	m.recomputeMatchedRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "recompute",
		Name:      "matched_rows_total",
		Help:      "Result rows matched to new-format source data",
	})

	m.recomputeFallbackRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "recompute",
		Name:      "fallback_rows_total",
		Help:      "Unmatched result rows that received the documented fallback value",
	})

	m.recomputePointDrift = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "recompute",
		Name:      "point_drift",
		Help:      "Aggregate multiplied-point drift of the most recent recomputation",
	})

	m.storeSnapshotDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "snapshot_duration_milliseconds",
		Help:      "Histogram of snapshot load duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "write_duration_milliseconds",
		Help:      "Histogram of batch write duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Total persistence errors surfaced to the operator",
	})
}

// RecordPricingRun increments the pricing run counter.
func RecordPricingRun() {
	globalManager.pricingRuns.Inc()
}

// RecordPricingRunDuration records one run's duration.
func RecordPricingRunDuration(d time.Duration) {
	globalManager.pricingRunDuration.Observe(float64(d.Milliseconds()))
}

// UpdateGolfersPriced sets the population size of the latest run.
func UpdateGolfersPriced(count int) {
	globalManager.golfersPriced.Set(float64(count))
}

// RecordRankInversions adds the inversions reported by a run.
func RecordRankInversions(count int) {
	globalManager.rankInversions.Add(float64(count))
}

// UpdateOverCapRosters sets the over-cap roster count of the latest run.
func UpdateOverCapRosters(count int) {
	globalManager.overCapRosters.Set(float64(count))
}

// RecordRecomputeRun increments the recomputation run counter.
func RecordRecomputeRun() {
	globalManager.recomputeRuns.Inc()
}

// RecordRecomputeRows adds matched and fallback row counts from one run.
func RecordRecomputeRows(matched, fallback int) {
	globalManager.recomputeMatchedRows.Add(float64(matched))
	globalManager.recomputeFallbackRows.Add(float64(fallback))
}

// UpdateRecomputePointDrift sets the drift of the latest recomputation.
func UpdateRecomputePointDrift(drift float64) {
	globalManager.recomputePointDrift.Set(drift)
}

// RecordStoreSnapshotDuration records one snapshot load's duration.
func RecordStoreSnapshotDuration(d time.Duration) {
	globalManager.storeSnapshotDuration.Observe(float64(d.Milliseconds()))
}

// RecordStoreWriteDuration records one batch write's duration.
func RecordStoreWriteDuration(d time.Duration) {
	globalManager.storeWriteDuration.Observe(float64(d.Milliseconds()))
}

// RecordStoreError increments the persistence error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// GetRegistry returns the custom registry used by the global manager, for
// exposing a /metrics endpoint in long-lived schedule mode.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
