// Package mocks provides testify mocks for the observability interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/observability/types"
)

// MockLogger is a mock implementation of the Logger interface
type MockLogger struct {
	mock.Mock
}

// Debug mocks the Debug method
func (m *MockLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// Info mocks the Info method
func (m *MockLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// Warn mocks the Warn method
func (m *MockLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

// Error mocks the Error method
func (m *MockLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	m.Called(ctx, msg, err, fields)
}

// WithFields mocks the WithFields method; returns itself unless an
// expectation supplies a different logger
func (m *MockLogger) WithFields(fields types.Fields) observability.Logger {
	args := m.Called(fields)
	if logger, ok := args.Get(0).(observability.Logger); ok {
		return logger
	}
	return m
}

// NoopLogger is a Logger that discards everything. Use it where a test
// needs a logger but makes no assertions about logging.
type NoopLogger struct{}

// Debug discards the entry
func (NoopLogger) Debug(ctx context.Context, msg string, fields types.Fields) {}

// Info discards the entry
func (NoopLogger) Info(ctx context.Context, msg string, fields types.Fields) {}

// Warn discards the entry
func (NoopLogger) Warn(ctx context.Context, msg string, fields types.Fields) {}

// Error discards the entry
func (NoopLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {}

// WithFields returns the receiver
func (n NoopLogger) WithFields(fields types.Fields) observability.Logger { return n }
