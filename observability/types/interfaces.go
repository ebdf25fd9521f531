// Package types defines the contracts for the conversion service's
// observability layer. Components depend on these interfaces, never on
// concrete logger or metrics implementations, so tests can substitute
// mocks and implementations can change without touching callers.
package types

import (
	"context"
	"io"
)

// Fields represents structured logging fields as key-value pairs.
// Values must be JSON-serializable. Common fields in this service:
// "unique_id", "page_count", "duration_seconds", "error_type".
type Fields map[string]interface{}

// Logger is the contract for structured logging. Implementations emit
// JSON lines suitable for log aggregation. All methods take a context so
// request correlation values (request_id, trace_id, unique_id) can be
// extracted automatically.
type Logger interface {
	// Debug logs detailed troubleshooting information.
	// Typically filtered out everywhere but local development.
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs general operational information.
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs conditions that are unexpected but do not fail the request.
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs a failure together with the causing error. The error's
	// message and concrete type are included in the entry.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a new Logger that includes the given fields in
	// every entry. Use for request-scoped context like unique_id.
	WithFields(fields Fields) Logger
}

// Metrics is the contract for metrics collection. Implementations expose
// Prometheus-compatible series named after the owning component.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type
	// (e.g. "convert", "fetch", "publish").
	RecordSuccess(operationType string)

	// RecordError increments the error counters for an operation and an
	// error category (e.g. "timeout", "invalid_format", "access_denied").
	RecordError(operationType string, errorType string)

	// RecordDuration observes an operation duration in seconds.
	// Use time.Since(start).Seconds().
	RecordDuration(operation string, duration float64)

	// RecordFileSize observes the size in bytes of a processed document
	// or rendered image ("pdf", "png").
	RecordFileSize(fileType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Pair with EndOperation, usually via defer.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	EndOperation(operation string)
}

// Config holds observability configuration shared by all components.
type Config struct {
	// ServiceName identifies the service in logs and metric names.
	ServiceName string

	// Environment is the deployment environment (local/staging/production).
	Environment string

	// LogLevel is the minimum level to emit: debug, info, warn, error.
	LogLevel string

	// LogOutput is where log lines go. Defaults to os.Stdout when nil.
	LogOutput io.Writer

	// AdditionalFields are included in every log entry from every
	// component, e.g. version or region.
	AdditionalFields Fields
}

// Provider hands out per-component Logger and Metrics instances.
// Repeated calls with the same component name return the same instance,
// which keeps Prometheus registration unique and log labels stable.
type Provider interface {
	// Logger returns the Logger for a component ("worker", "fetcher", ...).
	Logger(component string) Logger

	// Metrics returns the Metrics for a component.
	Metrics(component string) Metrics

	// Close releases resources held by the provider.
	Close() error
}
