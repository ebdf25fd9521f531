// Package observability provides the logging and metrics layer for the
// conversion service. A single Provider constructed at startup hands out
// per-component Logger and Metrics instances; components depend only on
// the interfaces in observability/types.
package observability

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/el-feo/content-processing-sub001/observability/logger"
	"github.com/el-feo/content-processing-sub001/observability/metrics"
	"github.com/el-feo/content-processing-sub001/observability/types"
)

// Logger is a type alias for the Logger interface from the types package.
type Logger = types.Logger

// Metrics is a type alias for the Metrics interface from the types package.
type Metrics = types.Metrics

// Fields is a type alias for structured logging fields.
type Fields = types.Fields

// Config is a type alias for the observability configuration.
type Config = types.Config

// Provider is a type alias for the Provider interface from the types package.
type Provider = types.Provider

// DefaultProvider implements Provider. Loggers and metrics are created
// lazily on first request and cached per component, which keeps log labels
// stable and prevents duplicate Prometheus registrations.
type DefaultProvider struct {
	config  *Config
	loggers map[string]Logger
	metrics map[string]Metrics
	mu      sync.RWMutex
}

// NewProvider creates an observability provider. A nil LogOutput defaults
// to os.Stdout.
func NewProvider(config *Config) Provider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stdout
	}

	return &DefaultProvider{
		config:  config,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// Logger returns the cached Logger for a component, creating it on first
// access. The logger carries the provider's additional fields plus a
// "component" field, and logs under "{service}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock
	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	serviceName := fmt.Sprintf("%s.%s", p.config.ServiceName, component)

	var l Logger = logger.New(
		serviceName,
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)
	p.loggers[component] = l

	return l
}

// Metrics returns the cached Metrics for a component, creating it on first
// access. Metric names are prefixed with the component name.
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring the write lock
	if m, exists := p.metrics[component]; exists {
		return m
	}

	var m Metrics = metrics.New(component)
	p.metrics[component] = m

	return m
}

// Close releases the provider's resources. The log output is closed when
// it implements io.Closer and is not stdout or stderr.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
