// Package metrics provides Prometheus metrics for the ringside telemetry service.
package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the ringside service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64 // nanoseconds
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Telemetry Metrics - what the reporter actually counts
	eventsRecorded  *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	eventsDuplicate prometheus.Counter

	// Flush Metrics - persisted time series
	flushes       *prometheus.CounterVec
	flushErrors   *prometheus.CounterVec
	flushLatency  *prometheus.HistogramVec
	closeFailures prometheus.Counter

	// Feedback Metrics
	feedbackSelected *prometheus.CounterVec

	// Session Metrics
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter

	// Queue Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueErrors      prometheus.Counter

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorsByComponent *prometheus.CounterVec

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "ringside",
		subsystem:        "telemetry",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether per-event telemetry counters are recorded.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// RefreshInterval returns how often gauge metrics should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return time.Duration(m.refreshInterval.Load())
}

// Configure applies runtime options to the global manager. Only
// WithMetricsEnabled and WithRefreshInterval have an effect; collectors are
// already registered, so options that shape them are ignored.
func Configure(opts ...Option) {
	scratch := &Manager{}
	scratch.enabled.Store(globalManager.Enabled())
	scratch.refreshInterval.Store(int64(globalManager.RefreshInterval()))
	for _, opt := range opts {
		opt(scratch)
	}
	globalManager.enabled.Store(scratch.Enabled())
	globalManager.refreshInterval.Store(int64(scratch.RefreshInterval()))
}

// Enabled reports whether the global manager records per-event counters.
func Enabled() bool { return globalManager.Enabled() }

// RefreshInterval returns the global gauge refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.eventsRecorded = auto.NewCounterVec(
		m.counterOpts("events_recorded_total", "Events applied to a participant tally"),
		[]string{"kind", "participant"},
	)
	m.eventsRejected = auto.NewCounterVec(
		m.counterOpts("events_rejected_total", "Events refused by a tally (unknown category, bad participant)"),
		[]string{"kind", "reason"},
	)
	m.eventsDuplicate = auto.NewCounter(
		m.counterOpts("events_duplicate_total", "Events dropped because their id was already seen"),
	)

	m.flushes = auto.NewCounterVec(
		m.counterOpts("flushes_total", "Snapshot rows appended to destinations"),
		[]string{"kind"},
	)
	m.flushErrors = auto.NewCounterVec(
		m.counterOpts("flush_errors_total", "Flushes that failed with an I/O error"),
		[]string{"kind"},
	)
	m.flushLatency = auto.NewHistogramVec(
		m.histogramOpts("flush_latency_milliseconds", "Latency of one flush across both participants"),
		[]string{"kind"},
	)
	m.closeFailures = auto.NewCounter(
		m.counterOpts("close_failures_total", "Destination releases that reported an error"),
	)

	m.feedbackSelected = auto.NewCounterVec(
		m.counterOpts("feedback_selected_total", "Feedback keys produced at match end"),
		[]string{"category", "side"},
	)

	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Sessions currently holding a reporter"))
	m.sessionsTotal = auto.NewCounter(m.counterOpts("sessions_total", "Sessions started since process start"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the event queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum capacity of the event queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Events enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Events dequeued"))
	m.queueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Enqueue attempts that were refused"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Current number of ingest workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time for a worker to apply one event"),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Events a worker failed to apply"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Telemetry Metrics Functions.

// RecordEventRecorded counts one event applied to a participant tally.
func RecordEventRecorded(kind string, participant int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.eventsRecorded.WithLabelValues(kind, strconv.Itoa(participant)).Inc()
}

// RecordEventRejected counts one event refused by a tally.
func RecordEventRejected(kind, reason string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.eventsRejected.WithLabelValues(kind, reason).Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	if !globalManager.Enabled() {
		return
	}
	globalManager.eventsDuplicate.Inc()
}

// Flush Metrics Functions.

// RecordFlush counts a successful flush and its latency.
func RecordFlush(kind string, latency time.Duration) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.flushes.WithLabelValues(kind).Inc()
	globalManager.flushLatency.WithLabelValues(kind).Observe(float64(latency.Milliseconds()))
}

// RecordFlushError counts a failed flush.
func RecordFlushError(kind string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.flushErrors.WithLabelValues(kind).Inc()
}

// RecordCloseFailure counts a destination that failed to release cleanly.
func RecordCloseFailure() {
	globalManager.closeFailures.Inc()
}

// RecordFeedbackSelected counts a feedback key produced at match end.
func RecordFeedbackSelected(category, side string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.feedbackSelected.WithLabelValues(category, side).Inc()
}

// Session Metrics Functions.

// RecordSessionStarted marks a new session as active.
func RecordSessionStarted() {
	globalManager.sessionsTotal.Inc()
	globalManager.activeSessions.Inc()
}

// RecordSessionStopped marks a session as torn down.
func RecordSessionStopped() {
	globalManager.activeSessions.Dec()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
