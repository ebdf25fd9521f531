// Package request models the conversion payload and validates it before
// any network I/O happens.
package request

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/el-feo/content-processing-sub001/internal/domain"
)

// Credentials are the temporary STS credentials supplied with bucket/key
// addressing. All three parts are required.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
}

// Complete reports whether all three credential parts are present.
func (c *Credentials) Complete() bool {
	return c != nil && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.SessionToken != ""
}

// ConversionRequest is the parsed body of a conversion call.
type ConversionRequest struct {
	UniqueID    string       `json:"unique_id"`
	Source      Target       `json:"source"`
	Destination Target       `json:"destination"`
	Credentials *Credentials `json:"credentials,omitempty"`
	Webhook     string       `json:"webhook,omitempty"`
}

// Options tunes validation for non-production setups.
type Options struct {
	// AllowHTTP permits plain http pre-signed URLs. Local test doubles only.
	AllowHTTP bool
	// AllowPrivateWebhook disables the webhook address guard. Local test
	// doubles only.
	AllowPrivateWebhook bool
	// EndpointHosts are additional object-store hosts accepted in
	// pre-signed URLs (endpoint overrides such as MinIO or LocalStack).
	EndpointHosts []string
}

// Parse decodes the raw payload. Malformed JSON is an INVALID_PAYLOAD
// failure; field-level problems are left to Validate.
func Parse(payload []byte) (*ConversionRequest, error) {
	var req ConversionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, domain.NewError(domain.CodeInvalidPayload, "Invalid JSON payload", err)
	}
	return &req, nil
}

// Validate checks the whole request. It runs before any fetch, render or
// publish work; the only network touch is the webhook host lookup.
func (r *ConversionRequest) Validate(ctx context.Context, opts Options) error {
	if strings.TrimSpace(r.UniqueID) == "" {
		return validationError("unique_id is required")
	}

	if r.Source.Mode == ModeUnset {
		return validationError("source is required")
	}
	if r.Destination.Mode == ModeUnset {
		return validationError("destination is required")
	}
	if r.Source.Mode != r.Destination.Mode {
		return validationError("source and destination must use the same addressing mode")
	}

	switch r.Source.Mode {
	case ModeSignedURL:
		if r.Credentials != nil {
			return validationError("credentials are not allowed with pre-signed URLs")
		}
		if err := validateSignedURL(r.Source.URL, "source", true, opts); err != nil {
			return err
		}
		if err := validateSignedURL(r.Destination.URL, "destination", false, opts); err != nil {
			return err
		}
	case ModeBucketKey:
		if r.Source.Bucket == "" || r.Source.Key == "" {
			return validationError("source bucket and key are required")
		}
		if r.Destination.Bucket == "" || r.Destination.Key == "" {
			return validationError("destination bucket and prefix are required")
		}
		if !r.Credentials.Complete() {
			return validationError("credentials must include accessKeyId, secretAccessKey and sessionToken")
		}
	}

	if r.Webhook != "" {
		if err := validateWebhook(ctx, r.Webhook, opts); err != nil {
			return err
		}
	}

	return nil
}

func validationError(message string) error {
	return domain.NewError(domain.CodeValidationError, message, nil)
}
