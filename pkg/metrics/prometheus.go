// Package metrics provides Prometheus metrics for the geodash forecast service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Forecast engine
	forecastsTotal   *prometheus.CounterVec
	forecastErrors   *prometheus.CounterVec
	forecastLatency  prometheus.Histogram
	predictorCalls   *prometheus.CounterVec
	predictorLatency prometheus.Histogram
	scoreLookups     *prometheus.CounterVec
	pctChangeRule    *prometheus.CounterVec
	scoreTableRows   prometheus.Gauge
	predictorMode    *prometheus.GaugeVec

	// Cache and recording
	cacheRequests     *prometheus.CounterVec
	recordsWritten    prometheus.Counter
	recordsDuplicate  prometheus.Counter
	recordErrors      prometheus.Counter
	repositoryLatency *prometheus.HistogramVec

	// Amenity lookups
	amenityQueries *prometheus.CounterVec
	amenityLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueue            prometheus.Counter
	queueDequeue            prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "geodash",
		subsystem:        "forecast",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.forecastsTotal = m.counterVec("forecasts_total",
		"Total number of forecasts produced, by source (engine or cache)", "source")
	m.forecastErrors = m.counterVec("forecast_errors_total",
		"Total number of forecast requests that failed at the service boundary", "reason")
	m.forecastLatency = m.histogram("forecast_latency_milliseconds",
		"End-to-end forecast computation latency in milliseconds", m.histogramBuckets)
	m.predictorCalls = m.counterVec("predictor_calls_total",
		"Forecast steps priced, by mode (model or fallback)", "mode")
	m.predictorLatency = m.histogram("predictor_latency_milliseconds",
		"Latency of a single model prediction in milliseconds", m.histogramBuckets)
	m.scoreLookups = m.counterVec("score_lookups_total",
		"Score table lookups by result (hit or miss)", "result")
	m.pctChangeRule = m.counterVec("pct_change_rule_total",
		"Percentage-change rule selected per forecast step", "rule")
	m.scoreTableRows = m.gauge("score_table_rows",
		"Number of distinct keys in the loaded score table")
	m.predictorMode = m.gaugeVec("predictor_mode",
		"1 for the active predictor mode (model or fallback), 0 otherwise", "mode")

	m.cacheRequests = m.counterVec("cache_requests_total",
		"Forecast cache lookups by result (hit, miss or error)", "result")
	m.recordsWritten = m.counter("records_written_total",
		"Forecast records persisted to the repository")
	m.recordsDuplicate = m.counter("records_duplicate_total",
		"Forecast records skipped because the fingerprint was already recorded")
	m.recordErrors = m.counter("record_errors_total",
		"Forecast records that failed to persist")
	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds",
		"Repository operation latency in milliseconds", "operation")

	m.amenityQueries = m.counterVec("amenity_queries_total",
		"Overpass amenity queries by result", "result")
	m.amenityLatency = m.histogram("amenity_query_latency_milliseconds",
		"Overpass amenity query latency in milliseconds",
		[]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current size of the record queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum record queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Record queue utilization ratio (size / capacity)")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Total number of records enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Total number of records dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.workerCount = m.gauge("worker_count", "Current number of recording workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordForecast counts a produced forecast and its latency.
func RecordForecast(source string, latencyMs float64) {
	globalManager.forecastsTotal.WithLabelValues(source).Inc()
	globalManager.forecastLatency.Observe(latencyMs)
}

// RecordForecastError counts a failed forecast request.
func RecordForecastError(reason string) {
	globalManager.forecastErrors.WithLabelValues(reason).Inc()
}

// RecordPredictorCall counts one priced step under the given mode.
func RecordPredictorCall(mode string) {
	globalManager.predictorCalls.WithLabelValues(mode).Inc()
}

// RecordPredictorLatency records the latency of one model prediction.
func RecordPredictorLatency(latencyMs float64) {
	globalManager.predictorLatency.Observe(latencyMs)
}

// RecordScoreLookup counts a score table lookup.
func RecordScoreLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.scoreLookups.WithLabelValues(result).Inc()
}

// RecordPctChangeRule counts which percentage-change rule priced a step.
func RecordPctChangeRule(rule string) {
	globalManager.pctChangeRule.WithLabelValues(rule).Inc()
}

// UpdateScoreTableRows sets the number of keys in the loaded score table.
func UpdateScoreTableRows(rows int) {
	globalManager.scoreTableRows.Set(float64(rows))
}

// UpdatePredictorMode flags the active predictor mode.
func UpdatePredictorMode(mode string) {
	globalManager.predictorMode.Reset()
	globalManager.predictorMode.WithLabelValues(mode).Set(1)
}

// RecordCacheRequest counts a forecast cache lookup (hit, miss or error).
func RecordCacheRequest(result string) {
	globalManager.cacheRequests.WithLabelValues(result).Inc()
}

// RecordForecastRecorded counts a persisted forecast record.
func RecordForecastRecorded() {
	globalManager.recordsWritten.Inc()
}

// RecordForecastDuplicate counts a record skipped by the deduper.
func RecordForecastDuplicate() {
	globalManager.recordsDuplicate.Inc()
}

// RecordForecastRecordError counts a record that failed to persist.
func RecordForecastRecordError() {
	globalManager.recordErrors.Inc()
}

// RecordRepositoryLatency records the latency of a repository operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordAmenityQuery counts an Overpass query and its latency.
func RecordAmenityQuery(result string, latencyMs float64) {
	globalManager.amenityQueries.WithLabelValues(result).Inc()
	globalManager.amenityLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

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
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

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

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
