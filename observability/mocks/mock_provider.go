package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/el-feo/content-processing-sub001/observability"
)

// MockProvider is a mock implementation of the Provider interface
type MockProvider struct {
	mock.Mock
}

// Logger mocks the Logger method
func (m *MockProvider) Logger(component string) observability.Logger {
	args := m.Called(component)
	if logger, ok := args.Get(0).(observability.Logger); ok {
		return logger
	}
	return nil
}

// Metrics mocks the Metrics method
func (m *MockProvider) Metrics(component string) observability.Metrics {
	args := m.Called(component)
	if metrics, ok := args.Get(0).(observability.Metrics); ok {
		return metrics
	}
	return nil
}

// Close mocks the Close method
func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NoopProvider hands out noop loggers and metrics. Use it to satisfy
// constructors in tests that assert nothing about observability.
type NoopProvider struct{}

// Logger returns a NoopLogger
func (NoopProvider) Logger(component string) observability.Logger { return NoopLogger{} }

// Metrics returns a NoopMetrics
func (NoopProvider) Metrics(component string) observability.Metrics { return NoopMetrics{} }

// Close is a no-op
func (NoopProvider) Close() error { return nil }
