// Package domain holds the error model shared by every conversion stage.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes surfaced by the conversion pipeline. The platform adapters
// map them to HTTP status codes.
const (
	CodeMissingToken      = "MISSING_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeExpiredToken      = "EXPIRED_TOKEN"
	CodeAuthUnavailable   = "AUTH_UNAVAILABLE"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeTooLarge          = "TOO_LARGE"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeTooManyPages      = "TOO_MANY_PAGES"
	CodeTimeout           = "TIMEOUT"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeConversionTimeout = "CONVERSION_TIMEOUT"
	CodePublishFailed     = "PUBLISH_FAILED"
	CodeNotifyFailed      = "NOTIFY_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// retryableCodes marks the failures a caller may reasonably retry. Auth
// outages and transient upstream failures qualify; validation and
// document-shape failures do not.
var retryableCodes = map[string]bool{
	CodeAuthUnavailable: true,
	CodeTimeout:         true,
	CodeUpstreamError:   true,
	CodePublishFailed:   true,
}

// DomainError represents a conversion-pipeline error with a stable code.
type DomainError struct {
	Code      string
	Message   string
	Err       error
	Retryable bool
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a domain error. The retryable flag is derived from the
// code so stages cannot disagree about what a caller may retry.
func NewError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: retryableCodes[code],
	}
}

// IsRetryable reports whether the code names a transient failure.
func IsRetryable(code string) bool {
	return retryableCodes[code]
}

// AsDomainError extracts a *DomainError from err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// MetricLabel renders the error's code as a metrics label, e.g.
// "access_denied". Errors without a domain code are labeled "unknown".
func MetricLabel(err error) string {
	if domainErr, ok := AsDomainError(err); ok {
		return strings.ToLower(domainErr.Code)
	}
	return "unknown"
}
