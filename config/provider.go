package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/el-feo/content-processing-sub001/utils"
)

// Provider manages configuration lifecycle and ensures singleton behavior
type Provider struct {
	config *Config
	mu     sync.RWMutex
	loaded bool
}

var (
	instance *Provider
	once     sync.Once
)

// GetProvider returns the singleton configuration provider instance
func GetProvider() *Provider {
	once.Do(func() {
		instance = &Provider{}
	})
	return instance
}

// Load loads configuration from environment variables and .env files
// This should be called once at application startup
func (p *Provider) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil // Already loaded
	}

	if err := p.loadEnvFiles(); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	cfg, err := p.parseConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = cfg
	p.loaded = true
	return nil
}

// MustLoad loads configuration and panics on error
// Use this for application initialization where errors are fatal
func (p *Provider) MustLoad() {
	if err := p.Load(); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
}

// Get returns the current configuration
// Returns error if configuration hasn't been loaded
func (p *Provider) Get() (*Config, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.loaded || p.config == nil {
		return nil, fmt.Errorf("configuration not loaded; call Load() first")
	}

	return p.config, nil
}

// MustGet returns the configuration or panics if not loaded
// Use this when you're certain configuration has been loaded
func (p *Provider) MustGet() *Config {
	cfg, err := p.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to get configuration: %v", err))
	}
	return cfg
}

// Reload reloads configuration from environment
// Useful for configuration updates without restart (use with caution)
func (p *Provider) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := p.parseConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	p.config = cfg
	return nil
}

// IsLoaded returns whether configuration has been loaded
func (p *Provider) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Reset clears the provider state (useful for testing)
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = nil
	p.loaded = false
}

// loadEnvFiles loads .env files in order of precedence
func (p *Provider) loadEnvFiles() error {
	// Load base .env file (optional)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	// Load environment-specific file (optional)
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	// Load .env.local for local overrides (highest precedence, optional)
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}

// parseConfig parses configuration from environment variables
func (p *Provider) parseConfig() (*Config, error) {
	cfg := &Config{
		Environment: utils.GetEnv("ENVIRONMENT", "local"),
		ServiceName: utils.GetEnv("SERVICE_NAME", "pdf-converter"),
		LogLevel:    utils.GetEnv("LOG_LEVEL", "info"),

		AWS: AWSConfig{
			Region:         utils.GetEnv("AWS_REGION", "us-east-1"),
			Endpoint:       utils.GetEnv("AWS_ENDPOINT_URL", ""),
			ForcePathStyle: utils.GetEnvBool("STORAGE_FORCE_PATH_STYLE", false),
		},

		HTTP: HTTPConfig{
			Host:            utils.GetEnv("HTTP_HOST", "0.0.0.0"),
			Port:            utils.GetEnvInt("HTTP_PORT", 8080),
			ShutdownTimeout: utils.GetEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},

		Auth: AuthConfig{
			SecretName:   utils.GetEnv("AUTH_SECRET_NAME", ""),
			SecretValue:  utils.GetEnv("AUTH_SECRET_VALUE", ""),
			PublicKeyPEM: utils.GetEnv("AUTH_PUBLIC_KEY", ""),
			GracePeriod:  utils.GetEnvDuration("AUTH_GRACE_PERIOD", 300*time.Second),
		},

		Convert: ConvertConfig{
			DPI:              utils.GetEnvInt("CONVERT_DPI", 150),
			MaxPages:         utils.GetEnvInt("CONVERT_MAX_PAGES", 100),
			MaxDocumentBytes: utils.GetEnvInt64("CONVERT_MAX_DOCUMENT_BYTES", 100*1024*1024),
			Workers:          utils.GetEnvInt("CONVERT_WORKERS", 5),
			RenderTimeout:    utils.GetEnvDuration("CONVERT_RENDER_TIMEOUT", 2*time.Minute),
			AllowHTTPURLs:    utils.GetEnvBool("VALIDATION_ALLOW_HTTP", false),
		},

		Fetch: FetchConfig{
			Timeout:     utils.GetEnvDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxAttempts: utils.GetEnvInt("FETCH_MAX_ATTEMPTS", 3),
			BackoffBase: utils.GetEnvDuration("FETCH_BACKOFF_BASE", 500*time.Millisecond),
		},

		Publish: PublishConfig{
			Timeout:     utils.GetEnvDuration("PUBLISH_TIMEOUT", 30*time.Second),
			MaxAttempts: utils.GetEnvInt("PUBLISH_MAX_ATTEMPTS", 3),
			BackoffBase: utils.GetEnvDuration("PUBLISH_BACKOFF_BASE", 200*time.Millisecond),
		},

		Webhook: WebhookConfig{
			Timeout:      utils.GetEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),
			MaxAttempts:  utils.GetEnvInt("WEBHOOK_MAX_ATTEMPTS", 3),
			BackoffBase:  utils.GetEnvDuration("WEBHOOK_BACKOFF_BASE", time.Second),
			AllowPrivate: utils.GetEnvBool("WEBHOOK_ALLOW_PRIVATE", false),
		},

		Handler: HandlerConfig{
			Timeout:        utils.GetEnvDuration("HANDLER_TIMEOUT", 10*time.Minute),
			MaxRequestSize: utils.GetEnvInt64("HTTP_MAX_BODY_BYTES", 1024*1024),
			EnableHealth:   utils.GetEnvBool("HANDLER_ENABLE_HEALTH", true),
			EnableMetrics:  utils.GetEnvBool("HANDLER_ENABLE_METRICS", true),
			EnableTracing:  utils.GetEnvBool("HANDLER_ENABLE_TRACING", true),
			Platform:       utils.GetEnv("PLATFORM", ""),
		},
	}

	cfg.applyDefaults()

	return cfg, nil
}
