/*
Package observability provides structured logging and metrics collection
for the PDF conversion service.

This package implements the observability layer shared by every pipeline
stage. Logs are JSON lines suitable for any log aggregation stack and
metrics are Prometheus compatible, exposed by the HTTP adapter on
/metrics.

# Architecture

The package uses a provider pattern with essential features:

	Provider (manages instances)
	    ├── Logger (JSON line output)
	    └── Metrics (Prometheus compatible)

# Design Principles

Provider Pattern: Manages singleton instances per component, ensuring
consistent configuration and preventing duplicate metric registrations.
Each component (fetcher, renderer, publisher, notifier, worker) gets its
own logger and metrics instance with appropriate labels.

Dependency Inversion: All components depend on the interfaces in
observability/types, not concrete implementations, enabling easy testing
with mocks and future implementation changes without affecting consumers.

Structured Logging: All logs are JSON-formatted with consistent field
naming. Context values like request_id and unique_id are automatically
extracted, so every stage's entries for one conversion correlate.

Semantic Metrics: Metrics follow Prometheus naming conventions with
meaningful labels, enabling powerful queries and alerting rules.

# Package Structure

	observability/
	├── types/
	│   └── interfaces.go   # Core contracts and types
	├── provider.go         # Provider implementation
	├── doc.go              # Package documentation
	├── logger/
	│   ├── json_logger.go       # JSON line logger
	│   └── json_logger_test.go  # Logger tests
	├── metrics/
	│   ├── prometheus_metrics.go      # Prometheus metrics
	│   └── prometheus_metrics_test.go # Metrics tests
	└── mocks/
	    ├── mock_logger.go   # Logger mock and noop
	    ├── mock_metrics.go  # Metrics mock and noop
	    └── mock_provider.go # Provider mock and noop

# Usage

Initialize the provider once at application startup:

	config := &observability.Config{
	    ServiceName: "pdf-converter",
	    Environment: "production",
	    LogLevel:    "info",
	    LogOutput:   os.Stdout,  // Or custom io.Writer
	    AdditionalFields: observability.Fields{
	        "version": "1.0.0",
	        "region":  "us-east-1",
	    },
	}

	provider := observability.NewProvider(config)
	defer provider.Close()

	// Each pipeline stage gets its components
	logger := provider.Logger("fetcher")
	metrics := provider.Metrics("fetcher")

	// Use in business logic with context
	logger.Info(ctx, "fetching source document", observability.Fields{
	    "mode": "signed_url",
	})

	// Track operation timing
	start := time.Now()
	metrics.StartOperation("fetch")
	defer func() {
	    metrics.EndOperation("fetch")
	    metrics.RecordDuration("fetch", time.Since(start).Seconds())
	}()

	// Record results
	if err != nil {
	    logger.Error(ctx, "fetch failed", err, observability.Fields{
	        "attempts": attempts,
	    })
	    metrics.RecordError("fetch", "timeout")
	} else {
	    metrics.RecordSuccess("fetch")
	    metrics.RecordFileSize("pdf", int64(len(data)))
	}

# Context Integration

The logger automatically extracts these context values if present:
  - request_id: Request correlation identifier, set by the handler layer
  - trace_id: Distributed tracing identifier
  - unique_id: Conversion job identifier, set by the worker

# Testing

Use provided mocks for unit testing:

	mockLogger := new(mocks.MockLogger)
	mockMetrics := new(mocks.MockMetrics)

	mockLogger.On("Info", ctx, "fetching source document", mock.Anything).Return()
	mockMetrics.On("StartOperation", "fetch").Return()
	mockMetrics.On("EndOperation", "fetch").Return()

Tests that assert nothing about observability pass the noop variants
instead: mocks.NoopLogger{} and mocks.NoopMetrics{}.

# Metrics Details

Pre-configured metrics with appropriate labels:

  - {component}_processed_total: Counter with labels [status, type]
  - {component}_errors_total: Counter with labels [error_type, operation]
  - {component}_duration_seconds: Histogram with label [operation]
  - {component}_file_size_bytes: Histogram with label [file_type]
  - {component}_in_progress: Gauge with label [operation]

Error types are the lowercased pipeline error codes (timeout,
access_denied, invalid_format, ...), so alert rules can distinguish
caller mistakes from infrastructure failures.

# Thread Safety

All components are thread-safe and can be used concurrently from
multiple goroutines without external synchronization. The render and
publish worker pools share one metrics instance per component.

# Security

Log fields never carry credential material. Callers elide pre-signed
query strings before logging URLs and mask access key identifiers; the
handler layer redacts authorization headers before they reach request
metadata.
*/
package observability
