package config

import "time"

// DefaultHandlerConfig returns sensible defaults for handler configuration
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Timeout:        10 * time.Minute,
		MaxRequestSize: 1024 * 1024, // 1MB; payloads carry URLs, not documents
		EnableHealth:   true,
		EnableMetrics:  true,
		EnableTracing:  true,
		Platform:       "", // Auto-detect
	}
}

// DefaultHTTPConfig returns sensible defaults for the HTTP server
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
	}
}

// DefaultAWSConfig returns sensible defaults for the AWS SDK
func DefaultAWSConfig() AWSConfig {
	return AWSConfig{
		Region: "us-east-1",
	}
}

// DefaultAuthConfig returns sensible defaults for token verification
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		GracePeriod: 300 * time.Second,
	}
}

// DefaultConvertConfig returns sensible defaults for the conversion pipeline
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		DPI:              150,
		MaxPages:         100,
		MaxDocumentBytes: 100 * 1024 * 1024, // 100MB
		Workers:          5,
		RenderTimeout:    2 * time.Minute,
	}
}

// DefaultFetchConfig returns sensible defaults for document download
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		BackoffBase: 500 * time.Millisecond,
	}
}

// DefaultPublishConfig returns sensible defaults for image upload
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// DefaultWebhookConfig returns sensible defaults for notification delivery
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout:     10 * time.Second,
		MaxAttempts: 3,
		BackoffBase: time.Second,
	}
}

// DefaultConfig returns a complete configuration with sensible defaults
// This is useful for testing or when you want to start with defaults and override specific parts
func DefaultConfig() *Config {
	return &Config{
		Environment: "local",
		ServiceName: "pdf-converter",
		LogLevel:    "info",

		AWS:     DefaultAWSConfig(),
		HTTP:    DefaultHTTPConfig(),
		Auth:    DefaultAuthConfig(),
		Convert: DefaultConvertConfig(),
		Fetch:   DefaultFetchConfig(),
		Publish: DefaultPublishConfig(),
		Webhook: DefaultWebhookConfig(),
		Handler: DefaultHandlerConfig(),
	}
}
