package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "pdf-converter", cfg.ServiceName)
	assert.Equal(t, 150, cfg.Convert.DPI)
	assert.Equal(t, 100, cfg.Convert.MaxPages)
	assert.Equal(t, int64(100*1024*1024), cfg.Convert.MaxDocumentBytes)
	assert.Equal(t, 5, cfg.Convert.Workers)
	assert.Equal(t, 300*time.Second, cfg.Auth.GracePeriod)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 3, cfg.Webhook.MaxAttempts)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: "SERVICE_NAME is required",
		},
		{
			name:    "dpi below range",
			mutate:  func(c *Config) { c.Convert.DPI = 50 },
			wantErr: "CONVERT_DPI must be between 72 and 600",
		},
		{
			name:    "dpi above range",
			mutate:  func(c *Config) { c.Convert.DPI = 1200 },
			wantErr: "CONVERT_DPI must be between 72 and 600",
		},
		{
			name:    "zero page ceiling",
			mutate:  func(c *Config) { c.Convert.MaxPages = 0 },
			wantErr: "CONVERT_MAX_PAGES must be positive",
		},
		{
			name:    "zero document ceiling",
			mutate:  func(c *Config) { c.Convert.MaxDocumentBytes = 0 },
			wantErr: "CONVERT_MAX_DOCUMENT_BYTES must be positive",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Convert.Workers = 0 },
			wantErr: "CONVERT_WORKERS must be positive",
		},
		{
			name:    "negative grace period",
			mutate:  func(c *Config) { c.Auth.GracePeriod = -time.Second },
			wantErr: "AUTH_GRACE_PERIOD cannot be negative",
		},
		{
			name:    "zero fetch attempts",
			mutate:  func(c *Config) { c.Fetch.MaxAttempts = 0 },
			wantErr: "FETCH_MAX_ATTEMPTS must be positive",
		},
		{
			name: "production requires secret name",
			mutate: func(c *Config) {
				c.Environment = "production"
			},
			wantErr: "AUTH_SECRET_NAME is required in production",
		},
		{
			name: "production rejects inline secret",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Auth.SecretValue = "inline"
			},
			wantErr: "AUTH_SECRET_VALUE must not be set in production",
		},
		{
			name: "production rejects http urls",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Auth.SecretName = "converter/signing-secret"
				c.Convert.AllowHTTPURLs = true
			},
			wantErr: "VALIDATION_ALLOW_HTTP must not be set in production",
		},
		{
			name: "production rejects private webhooks",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Auth.SecretName = "converter/signing-secret"
				c.Webhook.AllowPrivate = true
			},
			wantErr: "WEBHOOK_ALLOW_PRIVATE must not be set in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_EnvironmentDetection(t *testing.T) {
	tests := []struct {
		env        string
		local      bool
		staging    bool
		production bool
		test       bool
	}{
		{env: "local", local: true},
		{env: "development", local: true},
		{env: "staging", staging: true},
		{env: "Production", production: true},
		{env: "prod", production: true},
		{env: "test", test: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			assert.Equal(t, tt.local, cfg.IsLocal())
			assert.Equal(t, tt.staging, cfg.IsStaging())
			assert.Equal(t, tt.production, cfg.IsProduction())
			assert.Equal(t, tt.test, cfg.IsTest())
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Run("production enforces metrics and timeout floor", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Environment = "production"
		cfg.Auth.SecretName = "converter/signing-secret"
		cfg.Handler.EnableMetrics = false
		cfg.Handler.Timeout = 10 * time.Second

		cfg.applyDefaults()

		assert.True(t, cfg.Handler.EnableMetrics)
		assert.Equal(t, time.Minute, cfg.Handler.Timeout)
	})

	t.Run("local disables tracing", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Handler.EnableTracing = true

		cfg.applyDefaults()

		assert.False(t, cfg.Handler.EnableTracing)
	})
}

func TestHTTPConfig_Addr(t *testing.T) {
	cfg := HTTPConfig{Host: "127.0.0.1", Port: 9090}
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
}
