// Package metrics provides Prometheus metrics for the minestats analysis service.
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

// Manager manages all Prometheus metrics for the analysis service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	pipelineRuns          *prometheus.CounterVec
	pipelineDuration      prometheus.Histogram
	stageDuration         *prometheus.HistogramVec
	rowsIngested          prometheus.Counter
	rowsDropped           *prometheus.CounterVec
	tableRows             *prometheus.GaugeVec
	paretoFrontSize       *prometheus.GaugeVec
	schemaErrors          prometheus.Counter
	paretoConfigErrors    prometheus.Counter
	duplicateSubmissions  prometheus.Counter
	snapshotsStored       prometheus.Gauge
	storeSaveLatency      prometheus.Histogram
	storeErrors           prometheus.Counter
	lastSnapshotUnix      prometheus.Gauge
	lastSnapshotRetained  prometheus.Gauge
	lastSnapshotDuration  prometheus.Gauge
	watcherReloads        prometheus.Counter
	watcherReloadFailures prometheus.Counter

	// Queue metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker metrics
	workerCount             prometheus.Gauge
	workerJobsProcessed     prometheus.Counter
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "minestats",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.pipelineRuns = m.counterVec("pipeline_runs_total", "Total number of pipeline runs by outcome", "status")
	m.pipelineDuration = m.histogram("pipeline_duration_milliseconds", "End-to-end pipeline duration in milliseconds")
	m.stageDuration = m.histogramVec("stage_duration_milliseconds", "Duration of individual pipeline stages in milliseconds", "stage")
	m.rowsIngested = m.counter("rows_ingested_total", "Total number of run records retained after cleaning")
	m.rowsDropped = m.counterVec("rows_dropped_total", "Total number of raw rows dropped during cleaning, by first null column", "column")
	m.tableRows = m.gaugeVec("table_rows", "Row count of each result table in the latest snapshot", "table")
	m.paretoFrontSize = m.gaugeVec("pareto_front_size", "Number of non-dominated combos per board size in the latest snapshot", "dims")
	m.schemaErrors = m.counter("schema_errors_total", "Total number of inputs rejected for missing required columns")
	m.paretoConfigErrors = m.counter("pareto_config_errors_total", "Total number of pipeline runs rejected for an invalid Pareto configuration")
	m.duplicateSubmissions = m.counter("duplicate_submissions_total", "Total number of uploads skipped because an identical payload was already analyzed")
	m.snapshotsStored = m.gauge("snapshots_stored", "Number of snapshots currently held by the store")
	m.storeSaveLatency = m.histogram("store_save_latency_milliseconds", "Snapshot save latency in milliseconds")
	m.storeErrors = m.counter("store_errors_total", "Total number of snapshot store failures")
	m.lastSnapshotUnix = m.gauge("last_snapshot_unix", "Unix timestamp of the most recent snapshot")
	m.lastSnapshotRetained = m.gauge("last_snapshot_runs", "Number of cleaned runs in the most recent snapshot")
	m.lastSnapshotDuration = m.gauge("last_snapshot_duration_milliseconds", "Pipeline duration of the most recent snapshot in milliseconds")
	m.watcherReloads = m.counter("watcher_reloads_total", "Total number of re-analyses triggered by input file changes")
	m.watcherReloadFailures = m.counter("watcher_reload_failures_total", "Total number of failed re-analyses triggered by input file changes")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum job queue capacity")
	m.queueSize = m.gauge("queue_size", "Current number of queued analysis jobs")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Total number of rejected enqueues by reason", "reason")

	m.workerCount = m.gauge("worker_count", "Number of analysis workers")
	m.workerJobsProcessed = m.counter("worker_jobs_processed_total", "Total number of analysis jobs completed")
	m.workerErrors = m.counter("worker_errors_total", "Total number of failed analysis jobs")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Analysis job latency in milliseconds")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Current heap allocation in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause time in milliseconds")
}

// Pipeline recorders.

func RecordPipelineRun(status string) {
	if globalManager.enabled {
		globalManager.pipelineRuns.WithLabelValues(status).Inc()
	}
}

func RecordPipelineDuration(ms float64) {
	if globalManager.enabled {
		globalManager.pipelineDuration.Observe(ms)
	}
}

func RecordStageDuration(stage string, ms float64) {
	if globalManager.enabled {
		globalManager.stageDuration.WithLabelValues(stage).Observe(ms)
	}
}

func RecordRowsIngested(n int) {
	if globalManager.enabled {
		globalManager.rowsIngested.Add(float64(n))
	}
}

func RecordRowsDropped(column string, n int) {
	if globalManager.enabled {
		globalManager.rowsDropped.WithLabelValues(column).Add(float64(n))
	}
}

func UpdateTableRows(table string, n int) {
	if globalManager.enabled {
		globalManager.tableRows.WithLabelValues(table).Set(float64(n))
	}
}

func UpdateParetoFrontSize(dims string, n int) {
	if globalManager.enabled {
		globalManager.paretoFrontSize.WithLabelValues(dims).Set(float64(n))
	}
}

func RecordSchemaError() {
	if globalManager.enabled {
		globalManager.schemaErrors.Inc()
	}
}

func RecordParetoConfigError() {
	if globalManager.enabled {
		globalManager.paretoConfigErrors.Inc()
	}
}

func RecordDuplicateSubmission() {
	if globalManager.enabled {
		globalManager.duplicateSubmissions.Inc()
	}
}

// Store recorders.

func UpdateSnapshotsStored(n int) {
	if globalManager.enabled {
		globalManager.snapshotsStored.Set(float64(n))
	}
}

func RecordStoreSaveLatency(ms float64) {
	if globalManager.enabled {
		globalManager.storeSaveLatency.Observe(ms)
	}
}

func RecordStoreError() {
	if globalManager.enabled {
		globalManager.storeErrors.Inc()
	}
}

// RecordSnapshot publishes the headline figures of a freshly stored snapshot.
func RecordSnapshot(at time.Time, runs int, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.lastSnapshotUnix.Set(float64(at.Unix()))
	globalManager.lastSnapshotRetained.Set(float64(runs))
	globalManager.lastSnapshotDuration.Set(durationMs)
}

// Watcher recorders.

func RecordWatcherReload() {
	if globalManager.enabled {
		globalManager.watcherReloads.Inc()
	}
}

func RecordWatcherReloadFailure() {
	if globalManager.enabled {
		globalManager.watcherReloadFailures.Inc()
	}
}

// Queue recorders.

func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueTotal.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueTotal.Inc()
	}
}

func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// Worker recorders.

func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

func RecordWorkerJobProcessed() {
	if globalManager.enabled {
		globalManager.workerJobsProcessed.Inc()
	}
}

func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

func RecordWorkerProcessingLatency(ms float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(ms)
	}
}

// HTTP recorders.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
	}
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// System recorders.

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

func RecordSystemGCPauseTime(ms float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(ms)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval is how often gauge-style system metrics should be sampled.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
