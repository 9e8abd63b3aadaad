// Package metrics provides Prometheus metrics for the rating engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the leaderboard engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - replay and rating throughput
	gamesFolded      prometheus.Counter
	recordsSkipped   prometheus.Counter
	ratingUpdates    prometheus.Counter
	recomputeCount   prometheus.Counter
	recomputeLastTS  prometheus.Gauge
	recomputeSeconds prometheus.Histogram

	// Ingestion Metrics - tournament import quality
	tournamentsImported  prometheus.Counter
	tournamentsDuplicate prometheus.Counter
	tournamentsInvalid   prometheus.Counter

	// Operational Health Metrics
	leaderboardModels prometheus.Gauge
	historySize       prometheus.Gauge

	// Storage Metrics - history/snapshot IO
	storeWriteLatency prometheus.Histogram
	storeReadLatency  prometheus.Histogram
	storeErrors       prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "valyrian",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
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
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.gamesFolded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_folded_total",
		Help:      "Total number of game records folded into the leaderboard",
	})

	m.recordsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_skipped_total",
		Help:      "Total number of malformed game records skipped during replay",
	})

	m.ratingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_updates_total",
		Help:      "Total number of per-participant rating updates applied",
	})

	m.recomputeCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_total",
		Help:      "Total number of full leaderboard recomputations",
	})

	m.recomputeLastTS = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_last_timestamp_seconds",
		Help:      "Unix timestamp of the last completed recomputation",
	})

	m.recomputeSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_duration_seconds",
		Help:      "Histogram of full recomputation duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.tournamentsImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournaments_imported_total",
		Help:      "Total number of tournament results converted into game records",
	})

	m.tournamentsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournaments_duplicate_total",
		Help:      "Total number of tournaments skipped as duplicates (indicates re-ingestion)",
	})

	m.tournamentsInvalid = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tournaments_invalid_total",
		Help:      "Total number of tournaments rejected by validation",
	})

	m.leaderboardModels = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "models_total",
		Help:      "Total number of competitors on the leaderboard (business scale)",
	})

	m.historySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_size",
		Help:      "Number of game records in the append-only history",
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Store write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeReadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_read_latency_milliseconds",
		Help:      "Store read operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of storage read/write failures",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Registry returns the registry all global metrics are registered on.
func Registry() *prometheus.Registry {
	return customRegistry
}

// RecordGameFolded increments the folded games counter.
func RecordGameFolded() {
	globalManager.gamesFolded.Inc()
}

// RecordRecordSkipped increments the skipped records counter.
func RecordRecordSkipped() {
	globalManager.recordsSkipped.Inc()
}

// RecordRatingUpdates adds n to the per-participant rating update counter.
func RecordRatingUpdates(n int) {
	globalManager.ratingUpdates.Add(float64(n))
}

// RecordRecompute records one completed recomputation and its duration.
func RecordRecompute(duration time.Duration) {
	globalManager.recomputeCount.Inc()
	globalManager.recomputeLastTS.SetToCurrentTime()
	globalManager.recomputeSeconds.Observe(duration.Seconds())
}

// RecordTournamentImported increments the imported tournaments counter.
func RecordTournamentImported() {
	globalManager.tournamentsImported.Inc()
}

// RecordTournamentDuplicate increments the duplicate tournaments counter.
func RecordTournamentDuplicate() {
	globalManager.tournamentsDuplicate.Inc()
}

// RecordTournamentInvalid increments the invalid tournaments counter.
func RecordTournamentInvalid() {
	globalManager.tournamentsInvalid.Inc()
}

// UpdateLeaderboardModels sets the current competitor count.
func UpdateLeaderboardModels(count int) {
	globalManager.leaderboardModels.Set(float64(count))
}

// UpdateHistorySize sets the current history size.
func UpdateHistorySize(count int) {
	globalManager.historySize.Set(float64(count))
}

// RecordStoreWriteLatency records store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordStoreReadLatency records store read latency in milliseconds.
func RecordStoreReadLatency(latencyMs float64) {
	globalManager.storeReadLatency.Observe(latencyMs)
}

// RecordStoreError increments the storage failure counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}
