package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/el-feo/content-processing-sub001/handler"
)

// convertPath is the single conversion endpoint.
const convertPath = "/convert"

// HTTPAdapter adapts the handler for standard HTTP servers.
// This adapter can be used for local development, Kubernetes deployments,
// or any standard HTTP server environment.
type HTTPAdapter struct {
	handler        *handler.Handler
	metricsHandler http.Handler
}

// NewHTTPAdapter creates a new HTTP adapter with the provided handler.
func NewHTTPAdapter(h *handler.Handler) *HTTPAdapter {
	a := &HTTPAdapter{handler: h}
	if h.Config().EnableMetrics {
		a.metricsHandler = promhttp.Handler()
	}
	return a
}

// ServeHTTP implements the http.Handler interface, allowing the adapter
// to be used with any standard HTTP server or router.
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Handle health check endpoints
	if a.handler.Config().EnableHealth && a.isHealthCheck(r.URL.Path) {
		a.handleHealth(w, r)
		return
	}

	// Handle metrics endpoint
	if r.URL.Path == "/metrics" {
		if a.metricsHandler == nil {
			http.NotFound(w, r)
			return
		}
		a.metricsHandler.ServeHTTP(w, r)
		return
	}

	// Everything else is the conversion endpoint
	if r.URL.Path != convertPath {
		a.writeErrorBody(w, uuid.New().String(), http.StatusNotFound, "Not found", "")
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		a.writeErrorBody(w, uuid.New().String(), http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	// Read and validate request body
	body, err := a.readBody(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.writeErrorBody(w, a.requestID(r), status, "Failed to read request body", err.Error())
		return
	}

	// Build platform-agnostic request
	req := a.buildRequest(r, body)

	// Process request through handler
	ctx := r.Context()
	resp, err := a.handler.Handle(ctx, req)

	// Write response
	a.writeResponse(w, resp, err)
}

// isHealthCheck checks if the path is a health check endpoint
func (a *HTTPAdapter) isHealthCheck(path string) bool {
	healthPaths := []string{
		"/health",
		"/healthz",
		"/ready",
		"/readyz",
		"/live",
		"/livez",
	}

	for _, healthPath := range healthPaths {
		if path == healthPath {
			return true
		}
	}
	return false
}

// handleHealth handles health check requests. Liveness endpoints answer
// without touching dependencies; the others run the worker's health check.
func (a *HTTPAdapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/live" || r.URL.Path == "/livez" {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "alive",
			"time":   time.Now().UTC(),
		})
		return
	}

	// Check handler health
	if err := a.handler.Health(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	// Return healthy status
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"worker": a.handler.Worker().Name(),
		"time":   time.Now().UTC(),
	})
}

// readBody reads and validates the request body
func (a *HTTPAdapter) readBody(r *http.Request) ([]byte, error) {
	// Get max request size from handler config
	maxSize := a.handler.Config().MaxRequestSize
	if maxSize <= 0 {
		maxSize = 1024 * 1024 // Default 1MB
	}

	// Limit request body size
	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
	defer r.Body.Close()

	return io.ReadAll(r.Body)
}

// buildRequest creates a platform-agnostic request from HTTP request
func (a *HTTPAdapter) buildRequest(r *http.Request, body []byte) handler.Request {
	// Extract request ID from headers
	requestID := a.requestID(r)

	// Build metadata from headers and request info
	metadata := a.extractMetadata(r)

	// The raw bearer token rides in dedicated metadata for the auth
	// middleware; the logged header copy stays redacted.
	if token := extractBearerToken(r); token != "" {
		metadata[handler.MetaAuthToken] = token
	}

	return handler.Request{
		ID:        requestID,
		Source:    "http",
		Type:      "convert",
		Payload:   json.RawMessage(body),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// requestID extracts the request ID from headers or generates one.
func (a *HTTPAdapter) requestID(r *http.Request) string {
	// Common request ID headers
	headers := []string{
		"X-Request-ID",
		"X-Correlation-ID",
		"X-Amzn-Trace-Id",
	}

	for _, header := range headers {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}

	return uuid.New().String()
}

// extractBearerToken pulls the auth token from the request. The
// Authorization header takes precedence; X-Auth-Token is the fallback for
// clients that cannot set Authorization.
func extractBearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// extractMetadata builds metadata from HTTP request
func (a *HTTPAdapter) extractMetadata(r *http.Request) map[string]string {
	metadata := make(map[string]string)

	// Add request info
	metadata["http_method"] = r.Method
	metadata["http_path"] = r.URL.Path
	metadata["http_host"] = r.Host
	metadata[handler.MetaRemoteAddr] = r.RemoteAddr

	// Add selected headers
	relevantHeaders := []string{
		"Content-Type",
		"Accept",
		"User-Agent",
		"X-Forwarded-For",
		"X-Real-IP",
		"Authorization",
		"X-Auth-Token",
	}

	for _, header := range relevantHeaders {
		if value := r.Header.Get(header); value != "" {
			// Never record credential material
			switch header {
			case "Authorization":
				if strings.HasPrefix(value, "Bearer ") {
					value = "Bearer [REDACTED]"
				} else {
					value = "[REDACTED]"
				}
			case "X-Auth-Token":
				value = "[REDACTED]"
			}
			metadata["header_"+strings.ToLower(strings.ReplaceAll(header, "-", "_"))] = value
		}
	}

	// Add trace headers if present
	if traceID := r.Header.Get("X-Trace-ID"); traceID != "" {
		metadata["trace_id"] = traceID
	}

	return metadata
}

// writeResponse writes the handler response as HTTP response
func (a *HTTPAdapter) writeResponse(w http.ResponseWriter, resp handler.Response, err error) {
	// Set common headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", resp.ID)
	if traceID, ok := resp.Metadata["trace_id"]; ok {
		w.Header().Set("X-Trace-ID", traceID)
	}

	// A processing error without a structured response is an internal fault
	if err != nil && resp.Error == nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorBody{Error: "Request processing failed"})
		return
	}

	// Determine status code based on response
	statusCode := determineStatusCode(resp)
	w.WriteHeader(statusCode)

	if resp.Success {
		// The worker's result document is the response body
		if len(resp.Data) > 0 {
			w.Write(resp.Data)
		} else {
			w.Write([]byte("{}"))
		}
		return
	}

	body := errorBody{Error: "Request failed"}
	if resp.Error != nil {
		body.Error = resp.Error.Message
		body.Details = resp.Error.Details
	}
	json.NewEncoder(w).Encode(body)
}

// errorBody is the wire shape of a failed conversion.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeErrorBody writes an error response outside the handler pipeline
// (routing and transport failures).
func (a *HTTPAdapter) writeErrorBody(w http.ResponseWriter, requestID string, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Details: details})
}

// determineStatusCode maps response to HTTP status code
func determineStatusCode(resp handler.Response) int {
	if resp.Success {
		return http.StatusOK
	}

	if resp.Error == nil {
		return http.StatusInternalServerError
	}

	// Map error codes to HTTP status codes
	switch resp.Error.Code {
	case "MISSING_TOKEN", "INVALID_TOKEN", "EXPIRED_TOKEN":
		return http.StatusUnauthorized
	case "INVALID_PAYLOAD", "VALIDATION_ERROR", "TOO_LARGE", "INVALID_FORMAT", "TOO_MANY_PAGES":
		return http.StatusBadRequest
	case "ACCESS_DENIED":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "TIMEOUT", "CONVERSION_TIMEOUT":
		return http.StatusGatewayTimeout
	case "UPSTREAM_ERROR", "PUBLISH_FAILED":
		return http.StatusBadGateway
	case "AUTH_UNAVAILABLE", "RENDER_FAILED", "INTERNAL_ERROR":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Serve runs an HTTP server with the adapter until the context is
// cancelled, then drains in-flight requests within shutdownTimeout.
func (a *HTTPAdapter) Serve(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
