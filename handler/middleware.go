package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/observability/types"
)

// LoggingMiddleware adds structured logging to request processing
func LoggingMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			logger := provider.Logger("handler")

			// Extract context values
			workerName, _ := ctx.Value("worker").(string)
			platform, _ := ctx.Value("platform").(string)

			// Create logger with request context
			requestLogger := logger.WithFields(types.Fields{
				"request_id": req.ID,
				"type":       req.Type,
				"source":     req.Source,
				"worker":     workerName,
				"platform":   platform,
			})

			// Log request start
			requestLogger.Info(ctx, "Processing request", types.Fields{
				"payload_size": len(req.Payload),
			})

			// Track timing
			start := time.Now()

			// Process request
			resp, err := next(ctx, req)

			// Calculate duration
			duration := time.Since(start)

			// Log completion
			if err != nil {
				requestLogger.Error(ctx, "Request failed with error", err, types.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			} else if !resp.Success {
				errorCode := "unknown"
				errorMsg := ""
				if resp.Error != nil {
					errorCode = resp.Error.Code
					errorMsg = resp.Error.Message
				}
				requestLogger.Warn(ctx, "Request completed with failure", types.Fields{
					"error_code":  errorCode,
					"error_msg":   errorMsg,
					"duration_ms": duration.Milliseconds(),
				})
			} else {
				requestLogger.Info(ctx, "Request completed successfully", types.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			}

			// Add duration to response
			resp.Duration = duration

			return resp, err
		}
	}
}

// MetricsMiddleware records metrics for request processing
func MetricsMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			metrics := provider.Metrics("handler")

			// Get worker name from context
			workerName, _ := ctx.Value("worker").(string)
			if workerName == "" {
				workerName = "unknown"
			}

			// Start operation tracking
			metrics.StartOperation(workerName)
			defer metrics.EndOperation(workerName)

			// Track timing
			start := time.Now()

			// Process request
			resp, err := next(ctx, req)

			// Record duration
			duration := time.Since(start).Seconds()
			metrics.RecordDuration(workerName, duration)

			// Record outcome
			if err != nil {
				metrics.RecordError(workerName, "processing_error")
			} else if !resp.Success {
				errorType := "unknown_error"
				if resp.Error != nil {
					errorType = resp.Error.Code
				}
				metrics.RecordError(workerName, errorType)
			} else {
				metrics.RecordSuccess(workerName)
			}

			return resp, err
		}
	}
}

// RecoveryMiddleware recovers from panics and returns an error response.
// This middleware should be the outermost layer to catch all panics.
func RecoveryMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (resp Response, err error) {
			logger := provider.Logger("handler")
			metrics := provider.Metrics("handler")

			defer func() {
				if r := recover(); r != nil {
					// Log the panic with stack trace
					logger.Error(ctx, "Panic recovered", fmt.Errorf("%v", r), types.Fields{
						"request_id": req.ID,
						"worker":     ctx.Value("worker"),
						"stack":      string(debug.Stack()),
					})

					// Record panic metric
					metrics.RecordError("panic", "panic_recovered")

					// Return error response
					resp = NewErrorResponse(
						req.ID,
						"INTERNAL_ERROR",
						"An internal error occurred",
						"", // Don't expose panic details to client
					)

					// Set error for middleware chain
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			return next(ctx, req)
		}
	}
}

// TracingMiddleware adds distributed tracing context to requests.
// It ensures each request has a trace ID for correlation across services.
func TracingMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			// Extract or generate trace ID
			traceID := extractTraceID(req)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			// Extract or generate span ID
			spanID := uuid.New().String()

			// Get parent span ID if exists
			parentSpanID := req.Metadata["parent_span_id"]

			// Add to context
			ctx = context.WithValue(ctx, "trace_id", traceID)
			ctx = context.WithValue(ctx, "span_id", spanID)
			if parentSpanID != "" {
				ctx = context.WithValue(ctx, "parent_span_id", parentSpanID)
			}

			// Add to request metadata for downstream services
			req.Metadata["trace_id"] = traceID
			req.Metadata["span_id"] = spanID

			// Process request
			resp, err := next(ctx, req)

			// Add trace info to response
			if resp.Metadata == nil {
				resp.Metadata = make(map[string]string)
			}
			resp.Metadata["trace_id"] = traceID
			resp.Metadata["span_id"] = spanID

			return resp, err
		}
	}
}

// TimeoutMiddleware enforces a timeout on request processing.
// If the timeout is exceeded, it returns a timeout error response.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			// Create timeout context
			timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// Channel for result
			type result struct {
				resp Response
				err  error
			}
			resultChan := make(chan result, 1)

			// Process in goroutine
			go func() {
				resp, err := next(timeoutCtx, req)
				resultChan <- result{resp, err}
			}()

			// Wait for result or timeout
			select {
			case res := <-resultChan:
				return res.resp, res.err

			case <-timeoutCtx.Done():
				return NewErrorResponse(
					req.ID,
					"TIMEOUT",
					"Request processing timed out",
					fmt.Sprintf("Exceeded timeout of %v", timeout),
				), timeoutCtx.Err()
			}
		}
	}
}

// ValidationMiddleware validates and enriches incoming requests.
// It checks the envelope only; payload semantics belong to the worker.
func ValidationMiddleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			// Ensure request has an ID
			if req.ID == "" {
				req.ID = uuid.New().String()
			}

			// Ensure request has a timestamp
			if req.Timestamp.IsZero() {
				req.Timestamp = time.Now().UTC()
			}

			// Validate request type
			if req.Type == "" {
				return NewErrorResponse(
					req.ID,
					"VALIDATION_ERROR",
					"Request type is required",
					"Missing 'type' field in request",
				), nil
			}

			// Validate payload
			if len(req.Payload) == 0 {
				return NewErrorResponse(
					req.ID,
					"INVALID_PAYLOAD",
					"Request payload is required",
					"Empty payload",
				), nil
			}

			// Validate JSON payload
			if !json.Valid(req.Payload) {
				return NewErrorResponse(
					req.ID,
					"INVALID_PAYLOAD",
					"Invalid JSON payload",
					"Payload must be valid JSON",
				), nil
			}

			// Initialize metadata if nil
			if req.Metadata == nil {
				req.Metadata = make(map[string]string)
			}

			// Add validation timestamp
			req.Metadata["validated_at"] = time.Now().UTC().Format(time.RFC3339)

			return next(ctx, req)
		}
	}
}

// extractTraceID attempts to extract trace ID from various sources
func extractTraceID(req Request) string {
	// Check metadata for common trace ID keys
	traceKeys := []string{
		"trace_id",
		"x-trace-id",
		"x-b3-traceid",
		"x-request-id",
		"correlation-id",
	}

	for _, key := range traceKeys {
		if val, ok := req.Metadata[key]; ok && val != "" {
			return val
		}
	}

	return ""
}
