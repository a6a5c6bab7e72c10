// Package metrics provides Prometheus metrics for the sideout match
// scoring service.
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

// Manager manages all Prometheus metrics for the sideout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Event log metrics - the heart of the engine
	eventsAppended  prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  *prometheus.CounterVec
	eventsSynthetic prometheus.Counter
	undoSteps       prometheus.Counter
	foldLatency     prometheus.Histogram
	activeMatches   prometheus.Gauge

	// Persistence metrics - fire-and-forget save pipeline
	saveRequests  prometheus.Counter
	saveFailures  prometheus.Counter
	saveLatency   prometheus.Histogram
	saveQueueSize prometheus.Gauge
	lastSaveUnix  prometheus.Gauge

	// Live output metrics
	wsClients      prometheus.Gauge
	wsMessagesSent prometheus.Counter
	wsDropped      prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "sideout",
		subsystem:        "match",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.eventsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_appended_total",
		Help:      "Total number of events appended to match logs",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate events detected at intake or fold",
	})

	m.eventsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_rejected_total",
		Help:      "Total number of rejected actions by rejection reason",
	}, []string{"reason"})

	m.eventsSynthetic = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_synthetic_total",
		Help:      "Total number of synthetic set-ended/set-started events appended",
	})

	m.undoSteps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "undo_steps_total",
		Help:      "Total number of logical undo steps performed",
	})

	m.foldLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fold_latency_milliseconds",
		Help:      "Histogram of derived-state fold latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.activeMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_matches",
		Help:      "Number of matches currently loaded in memory",
	})

	m.saveRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_requests_total",
		Help:      "Total number of durable-save requests enqueued",
	})

	m.saveFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_failures_total",
		Help:      "Total number of durable-save attempts that failed",
	})

	m.saveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_latency_milliseconds",
		Help:      "Histogram of durable-save write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.saveQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_queue_size",
		Help:      "Current number of pending save requests",
	})

	m.lastSaveUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_save_timestamp_seconds",
		Help:      "Unix timestamp of the last successful durable save",
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_clients",
		Help:      "Number of connected websocket subscribers",
	})

	m.wsMessagesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_messages_sent_total",
		Help:      "Total number of snapshots broadcast to websocket subscribers",
	})

	m.wsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ws_messages_dropped_total",
		Help:      "Total number of snapshots dropped due to slow subscribers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component and kind",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_time_milliseconds",
		Help:      "Histogram of GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom Prometheus registry used by the global
// manager, for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Event log metrics.

// RecordEventAppended increments the appended-events counter.
func RecordEventAppended() { globalManager.eventsAppended.Inc() }

// RecordEventDuplicate increments the duplicate-events counter.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordEventRejected increments the rejection counter for a reason.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordSyntheticEvent increments the synthetic-events counter.
func RecordSyntheticEvent() { globalManager.eventsSynthetic.Inc() }

// RecordUndoStep increments the undo-steps counter.
func RecordUndoStep() { globalManager.undoSteps.Inc() }

// RecordFoldLatency records one derived-state fold duration.
func RecordFoldLatency(ms float64) { globalManager.foldLatency.Observe(ms) }

// UpdateActiveMatches sets the loaded-matches gauge.
func UpdateActiveMatches(n int) { globalManager.activeMatches.Set(float64(n)) }

// Persistence metrics.

// RecordSaveRequest increments the save-requests counter.
func RecordSaveRequest() { globalManager.saveRequests.Inc() }

// RecordSaveFailure increments the save-failures counter.
func RecordSaveFailure() { globalManager.saveFailures.Inc() }

// RecordSaveLatency records one durable-save write duration.
func RecordSaveLatency(ms float64) { globalManager.saveLatency.Observe(ms) }

// UpdateSaveQueueSize sets the pending save-requests gauge.
func UpdateSaveQueueSize(n int) { globalManager.saveQueueSize.Set(float64(n)) }

// UpdateLastSaveTime sets the last-successful-save timestamp gauge.
func UpdateLastSaveTime(t time.Time) { globalManager.lastSaveUnix.Set(float64(t.Unix())) }

// Live output metrics.

// UpdateWSClients sets the connected-subscribers gauge.
func UpdateWSClients(n int) { globalManager.wsClients.Set(float64(n)) }

// RecordWSMessageSent increments the broadcast counter.
func RecordWSMessageSent() { globalManager.wsMessagesSent.Inc() }

// RecordWSMessageDropped increments the dropped-broadcast counter.
func RecordWSMessageDropped() { globalManager.wsDropped.Inc() }

// HTTP metrics.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records one request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// Error metrics.

// RecordErrorByComponent increments the component error counter.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

// RecordSystemGCPauseTime records one GC pause duration.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}
