package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string

	// Component configurations
	AWS     AWSConfig
	HTTP    HTTPConfig
	Auth    AuthConfig
	Convert ConvertConfig
	Fetch   FetchConfig
	Publish PublishConfig
	Webhook WebhookConfig
	Handler HandlerConfig
}

// AWSConfig holds AWS SDK configuration
type AWSConfig struct {
	Region         string
	Endpoint       string // Only for local test doubles (LocalStack/MinIO)
	ForcePathStyle bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Addr returns the listen address for the HTTP server
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig holds bearer-token verification configuration
type AuthConfig struct {
	// SecretName is the Secrets Manager secret holding the HMAC signing secret
	SecretName string
	// SecretValue bypasses the secret store when set; local/test use only
	SecretValue string
	// PublicKeyPEM enables RSA verification as the alternate flow when set
	PublicKeyPEM string
	// GracePeriod is the tolerance window for expired tokens
	GracePeriod time.Duration
}

// ConvertConfig holds the conversion pipeline configuration
type ConvertConfig struct {
	DPI              int
	MaxPages         int
	MaxDocumentBytes int64
	Workers          int
	RenderTimeout    time.Duration
	// AllowHTTPURLs accepts plain http signed URLs; local test doubles only
	AllowHTTPURLs bool
}

// FetchConfig holds document download configuration
type FetchConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// PublishConfig holds image upload configuration
type PublishConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// WebhookConfig holds notification delivery configuration
type WebhookConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
	// AllowPrivate disables the SSRF guard; local test doubles only
	AllowPrivate bool
}

// HandlerConfig holds handler configuration
type HandlerConfig struct {
	Timeout        time.Duration
	MaxRequestSize int64
	EnableHealth   bool
	EnableMetrics  bool
	EnableTracing  bool
	Platform       string // auto-detected if empty
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	// Core validations
	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	// Production-specific validations
	if c.IsProduction() {
		if c.Auth.SecretName == "" && c.Auth.SecretValue == "" {
			errors = append(errors, "AUTH_SECRET_NAME is required in production")
		}
		if c.Auth.SecretValue != "" {
			errors = append(errors, "AUTH_SECRET_VALUE must not be set in production")
		}
		if c.Convert.AllowHTTPURLs {
			errors = append(errors, "VALIDATION_ALLOW_HTTP must not be set in production")
		}
		if c.Webhook.AllowPrivate {
			errors = append(errors, "WEBHOOK_ALLOW_PRIVATE must not be set in production")
		}
	}

	// Range validations
	if c.Convert.DPI < 72 || c.Convert.DPI > 600 {
		errors = append(errors, "CONVERT_DPI must be between 72 and 600")
	}
	if c.Convert.MaxPages < 1 {
		errors = append(errors, "CONVERT_MAX_PAGES must be positive")
	}
	if c.Convert.MaxDocumentBytes <= 0 {
		errors = append(errors, "CONVERT_MAX_DOCUMENT_BYTES must be positive")
	}
	if c.Convert.Workers < 1 {
		errors = append(errors, "CONVERT_WORKERS must be positive")
	}
	if c.Convert.RenderTimeout <= 0 {
		errors = append(errors, "CONVERT_RENDER_TIMEOUT must be positive")
	}
	if c.Auth.GracePeriod < 0 {
		errors = append(errors, "AUTH_GRACE_PERIOD cannot be negative")
	}
	if c.Fetch.Timeout <= 0 {
		errors = append(errors, "FETCH_TIMEOUT must be positive")
	}
	if c.Fetch.MaxAttempts < 1 {
		errors = append(errors, "FETCH_MAX_ATTEMPTS must be positive")
	}
	if c.Publish.Timeout <= 0 {
		errors = append(errors, "PUBLISH_TIMEOUT must be positive")
	}
	if c.Publish.MaxAttempts < 1 {
		errors = append(errors, "PUBLISH_MAX_ATTEMPTS must be positive")
	}
	if c.Webhook.Timeout <= 0 {
		errors = append(errors, "WEBHOOK_TIMEOUT must be positive")
	}
	if c.Webhook.MaxAttempts < 1 {
		errors = append(errors, "WEBHOOK_MAX_ATTEMPTS must be positive")
	}
	if c.Handler.Timeout <= 0 {
		errors = append(errors, "HANDLER_TIMEOUT must be positive")
	}
	if c.Handler.MaxRequestSize <= 0 {
		errors = append(errors, "HTTP_MAX_BODY_BYTES must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// applyDefaults applies environment-specific defaults
func (c *Config) applyDefaults() {
	if c.IsProduction() {
		// Observability is not optional in production
		c.Handler.EnableMetrics = true

		// Rendering large documents needs headroom over the dev default
		if c.Handler.Timeout < time.Minute {
			c.Handler.Timeout = time.Minute
		}
	}

	if c.IsLocal() {
		c.Handler.EnableTracing = false
	}
}

// Environment detection methods

// IsLocal returns true if running in local/development environment
func (c *Config) IsLocal() bool {
	env := strings.ToLower(c.Environment)
	return env == "local" || env == "development" || env == "dev"
}

// IsStaging returns true if running in staging environment
func (c *Config) IsStaging() bool {
	env := strings.ToLower(c.Environment)
	return env == "staging" || env == "stage"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	env := strings.ToLower(c.Environment)
	return env == "test" || env == "testing"
}
