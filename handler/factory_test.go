package handler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/observability/mocks"
)

func TestNewFactory(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := new(mocks.MockProvider)

	factory := NewFactory(worker, provider)

	assert.NotNil(t, factory)
	assert.Equal(t, worker, factory.worker)
	assert.Equal(t, provider, factory.provider)
}

func TestFactory_WithHandlerConfig(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := new(mocks.MockProvider)

	customConfig := config.HandlerConfig{
		Timeout:  60 * time.Second,
		Platform: "lambda",
	}

	factory := NewFactory(worker, provider).WithHandlerConfig(customConfig)

	assert.Equal(t, customConfig, factory.handlerCfg)
}

func TestFactory_Create(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := new(mocks.MockProvider)

	factory := NewFactory(worker, provider)
	handler := factory.Create()

	assert.NotNil(t, handler)
	assert.Equal(t, worker, handler.worker)
	assert.NotEmpty(t, handler.middlewares) // Should have default middleware
}

func TestFactory_CreateHTTP(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := new(mocks.MockProvider)

	factory := NewFactory(worker, provider)
	handler := factory.CreateHTTP()

	assert.NotNil(t, handler)
	assert.Equal(t, "http", handler.config.Platform)
}

func TestFactory_CreateLambda(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := new(mocks.MockProvider)

	factory := NewFactory(worker, provider)
	handler := factory.CreateLambda()

	assert.NotNil(t, handler)
	assert.Equal(t, "lambda", handler.config.Platform)
}

func TestFactory_WithMiddleware(t *testing.T) {
	worker := &TestWorker{name: "test"}
	provider := mocks.NoopProvider{}

	var order []string
	authLike := func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			order = append(order, "custom")
			return next(ctx, req)
		}
	}

	cfg := config.HandlerConfig{Platform: "http"}
	handler := NewFactory(worker, provider).
		WithHandlerConfig(cfg).
		WithMiddleware(authLike).
		Create()

	req := Request{ID: "test-123", Type: "convert", Payload: []byte(`{}`)}
	resp, err := handler.Handle(context.Background(), req)

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"custom"}, order)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "Lambda function name",
			envVars:  map[string]string{"AWS_LAMBDA_FUNCTION_NAME": "pdf-converter"},
			expected: "lambda",
		},
		{
			name:     "Lambda runtime API",
			envVars:  map[string]string{"AWS_LAMBDA_RUNTIME_API": "127.0.0.1:9001"},
			expected: "lambda",
		},
		{
			name:     "Default",
			envVars:  map[string]string{},
			expected: "http",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for key, value := range tt.envVars {
				os.Setenv(key, value)
				defer os.Unsetenv(key)
			}

			platform := DetectPlatform()
			assert.Equal(t, tt.expected, platform)
		})
	}
}
