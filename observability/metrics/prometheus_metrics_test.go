package metrics

import (
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	// Create a new registry for testing
	reg := prometheus.NewRegistry()

	// Clear default registry for test isolation
	prometheus.DefaultRegisterer = reg

	metrics := New("test-service")

	assert.NotNil(t, metrics)
	assert.Equal(t, "test-service", metrics.serviceName)
}

func TestNew_MetricNamesQueryableWithoutQuoting(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg

	// Component names follow snake_case so every family stays a classic
	// PromQL identifier, no UTF-8 quoting needed.
	metrics := New("storage_s3")
	metrics.RecordSuccess("get")

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)

	classic := regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	for _, family := range families {
		assert.Regexp(t, classic, family.GetName())
	}
}

func TestPrometheusMetrics_RecordSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg

	metrics := New("test")

	metrics.RecordSuccess("pdf")
	metrics.RecordSuccess("pdf")
	metrics.RecordSuccess("page")

	// Verify counters
	pdfCount := testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "pdf"))
	pageCount := testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "page"))

	assert.Equal(t, 2.0, pdfCount)
	assert.Equal(t, 1.0, pageCount)
}

func TestPrometheusMetrics_RecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg

	metrics := New("test")

	metrics.RecordError("fetch", "timeout")
	metrics.RecordError("fetch", "timeout")
	metrics.RecordError("render", "invalid_format")

	// Verify processed counter
	fetchErrorCount := testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "fetch"))
	renderErrorCount := testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "render"))

	assert.Equal(t, 2.0, fetchErrorCount)
	assert.Equal(t, 1.0, renderErrorCount)

	// Verify error counter
	timeoutErrors := testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("timeout", "fetch"))
	formatErrors := testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("invalid_format", "render"))

	assert.Equal(t, 2.0, timeoutErrors)
	assert.Equal(t, 1.0, formatErrors)
}

func TestPrometheusMetrics_Operations(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg

	metrics := New("test")

	// Start operations
	metrics.StartOperation("fetch")
	metrics.StartOperation("fetch")
	metrics.StartOperation("render")

	// Verify gauges
	fetchGauge := testutil.ToFloat64(metrics.inProgress.WithLabelValues("fetch"))
	renderGauge := testutil.ToFloat64(metrics.inProgress.WithLabelValues("render"))

	assert.Equal(t, 2.0, fetchGauge)
	assert.Equal(t, 1.0, renderGauge)

	// End operations
	metrics.EndOperation("fetch")
	metrics.EndOperation("render")

	// Verify updated gauges
	fetchGauge = testutil.ToFloat64(metrics.inProgress.WithLabelValues("fetch"))
	renderGauge = testutil.ToFloat64(metrics.inProgress.WithLabelValues("render"))

	assert.Equal(t, 1.0, fetchGauge)
	assert.Equal(t, 0.0, renderGauge)
}
