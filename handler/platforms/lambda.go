package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/el-feo/content-processing-sub001/handler"
)

// LambdaAdapter adapts the handler to the AWS Lambda runtime. It accepts
// API Gateway proxy events and Lambda function URL events; both carry the
// same conversion request and produce the same wire response.
type LambdaAdapter struct {
	handler *handler.Handler
}

// NewLambdaAdapter creates a new Lambda adapter
func NewLambdaAdapter(h *handler.Handler) *LambdaAdapter {
	return &LambdaAdapter{handler: h}
}

// Start begins the Lambda runtime handler
func (a *LambdaAdapter) Start() {
	lambda.Start(a.HandleEvent)
}

// HandleEvent is the main Lambda handler that routes different event types
func (a *LambdaAdapter) HandleEvent(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// API Gateway proxy events carry an HTTPMethod at the top level
	var proxyEvent events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &proxyEvent); err == nil && proxyEvent.HTTPMethod != "" {
		return a.handleProxyEvent(ctx, proxyEvent)
	}

	// Function URL events nest the method under requestContext.http
	var urlEvent events.LambdaFunctionURLRequest
	if err := json.Unmarshal(event, &urlEvent); err == nil && urlEvent.RequestContext.HTTP.Method != "" {
		return a.handleFunctionURLEvent(ctx, urlEvent)
	}

	return nil, fmt.Errorf("unsupported event type")
}

// handleProxyEvent processes an API Gateway proxy integration event
func (a *LambdaAdapter) handleProxyEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	status, headers, body := a.process(ctx,
		event.HTTPMethod,
		event.Path,
		event.Headers,
		event.Body,
		event.IsBase64Encoded,
	)

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}, nil
}

// handleFunctionURLEvent processes a Lambda function URL event
func (a *LambdaAdapter) handleFunctionURLEvent(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	status, headers, body := a.process(ctx,
		event.RequestContext.HTTP.Method,
		event.RawPath,
		event.Headers,
		event.Body,
		event.IsBase64Encoded,
	)

	return events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}, nil
}

// process runs one transport-shaped request through the handler and
// renders the wire response pieces.
func (a *LambdaAdapter) process(ctx context.Context, method, path string, headers map[string]string, body string, isBase64 bool) (int, map[string]string, string) {
	requestID := headerValue(headers, "X-Request-ID")
	if requestID == "" {
		requestID = headerValue(headers, "X-Correlation-ID")
	}
	if requestID == "" {
		requestID = headerValue(headers, "X-Amzn-Trace-Id")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	respHeaders := map[string]string{
		"Content-Type": "application/json",
		"X-Request-ID": requestID,
	}

	if path != "" && path != convertPath {
		return http.StatusNotFound, respHeaders, errorJSON("Not found", "")
	}
	if !strings.EqualFold(method, http.MethodPost) {
		respHeaders["Allow"] = http.MethodPost
		return http.StatusMethodNotAllowed, respHeaders, errorJSON("Method not allowed", "")
	}

	payload, err := decodeBody(body, isBase64)
	if err != nil {
		return http.StatusBadRequest, respHeaders, errorJSON("Failed to read request body", err.Error())
	}

	req := a.buildRequest(requestID, headers, payload)

	resp, err := a.handler.Handle(ctx, req)

	if err != nil && resp.Error == nil {
		return http.StatusInternalServerError, respHeaders, errorJSON("Request processing failed", "")
	}

	status := determineStatusCode(resp)
	if resp.Success {
		if len(resp.Data) > 0 {
			return status, respHeaders, string(resp.Data)
		}
		return status, respHeaders, "{}"
	}

	message := "Request failed"
	details := ""
	if resp.Error != nil {
		message = resp.Error.Message
		details = resp.Error.Details
	}
	return status, respHeaders, errorJSON(message, details)
}

// buildRequest converts transport pieces to a handler.Request
func (a *LambdaAdapter) buildRequest(requestID string, headers map[string]string, payload []byte) handler.Request {
	metadata := map[string]string{
		"lambda_request_id": requestID,
	}

	if ct := headerValue(headers, "Content-Type"); ct != "" {
		metadata["header_content_type"] = ct
	}
	if auth := headerValue(headers, "Authorization"); auth != "" {
		metadata["header_authorization"] = "[REDACTED]"
	}
	if headerValue(headers, "X-Auth-Token") != "" {
		metadata["header_x_auth_token"] = "[REDACTED]"
	}

	if token := bearerFromHeaders(headers); token != "" {
		metadata[handler.MetaAuthToken] = token
	}

	return handler.Request{
		ID:        requestID,
		Source:    "lambda",
		Type:      "convert",
		Payload:   json.RawMessage(payload),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// bearerFromHeaders applies the same extraction rules as the HTTP adapter:
// Authorization bearer first, X-Auth-Token fallback.
func bearerFromHeaders(headers map[string]string) string {
	if auth := headerValue(headers, "Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	return strings.TrimSpace(headerValue(headers, "X-Auth-Token"))
}

// headerValue performs a case-insensitive header lookup. Function URL
// events lowercase header names; API Gateway preserves the client's casing.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// decodeBody returns the raw payload bytes, reversing the base64 encoding
// the Lambda transport applies to binary bodies.
func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 body: %w", err)
	}
	return decoded, nil
}

// errorJSON renders the error wire shape.
func errorJSON(message, details string) string {
	b, err := json.Marshal(errorBody{Error: message, Details: details})
	if err != nil {
		return `{"error":"Request failed"}`
	}
	return string(b)
}
