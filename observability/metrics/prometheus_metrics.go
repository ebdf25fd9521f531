// Package metrics implements Prometheus metrics collection for the
// conversion service. Metric names are prefixed with the owning
// component's name so each worker registers a unique series set.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements the Metrics interface on the Prometheus
// client library. Five pre-configured collectors cover the service's
// needs: processed counts, error counts, durations, payload sizes and
// in-flight operations.
type PrometheusMetrics struct {
	serviceName string

	// processedTotal counts processed items by status and operation type
	processedTotal *prometheus.CounterVec
	// errorsTotal breaks failures down by error category and operation
	errorsTotal *prometheus.CounterVec
	// durationSeconds is a latency histogram per operation
	durationSeconds *prometheus.HistogramVec
	// fileSizeBytes is a size histogram per payload type (pdf, png)
	fileSizeBytes *prometheus.HistogramVec
	// inProgress gauges concurrent operations
	inProgress *prometheus.GaugeVec
}

// New creates a PrometheusMetrics instance and registers its collectors
// with the default registry. Registration panics on duplicate names, so
// callers must construct at most one instance per service name (the
// observability provider enforces this per component).
//
// Registered series:
//   - {serviceName}_processed_total{status,type}
//   - {serviceName}_errors_total{error_type,operation}
//   - {serviceName}_duration_seconds{operation}
//   - {serviceName}_file_size_bytes{file_type}
//   - {serviceName}_in_progress{operation}
func New(serviceName string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		serviceName: serviceName,
	}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", serviceName),
			Help: fmt.Sprintf("Total processed items by %s", serviceName),
		},
		[]string{"status", "type"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", serviceName),
			Help: fmt.Sprintf("Total errors in %s", serviceName),
		},
		[]string{"error_type", "operation"},
	)

	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", serviceName),
			Help:    fmt.Sprintf("Operation duration in %s", serviceName),
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Exponential buckets covering a one-page render up to the document
	// size ceiling: 1KB, 10KB, 100KB, 1MB, 10MB, 100MB, 1GB
	m.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_file_size_bytes", serviceName),
			Help: fmt.Sprintf("Payload sizes processed by %s", serviceName),
			Buckets: []float64{
				1024,
				10240,
				102400,
				1048576,
				10485760,
				104857600,
				1073741824,
			},
		},
		[]string{"file_type"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", serviceName),
			Help: fmt.Sprintf("Operations in progress in %s", serviceName),
		},
		[]string{"operation"},
	)

	prometheus.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.fileSizeBytes,
		m.inProgress,
	)

	return m
}

// RecordSuccess increments the processed counter with status="success".
func (m *PrometheusMetrics) RecordSuccess(operationType string) {
	m.processedTotal.WithLabelValues("success", operationType).Inc()
}

// RecordError increments the processed counter with status="error" and the
// detailed error counter. Both views are needed: headline failure rates
// and per-category breakdowns for alerting.
func (m *PrometheusMetrics) RecordError(operationType string, errorType string) {
	m.processedTotal.WithLabelValues("error", operationType).Inc()
	m.errorsTotal.WithLabelValues(errorType, operationType).Inc()
}

// RecordDuration observes an operation duration in seconds.
func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordFileSize observes a payload size in bytes.
func (m *PrometheusMetrics) RecordFileSize(fileType string, bytes int64) {
	m.fileSizeBytes.WithLabelValues(fileType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge for an operation.
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge for an operation.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}
