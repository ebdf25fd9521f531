package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/observability/mocks"
	"github.com/el-feo/content-processing-sub001/storage"
)

// statusError mimics the SDK's response errors, which expose the HTTP
// status of unmodeled API failures.
type statusError struct {
	status int
}

func (e *statusError) Error() string       { return fmt.Sprintf("api error, status %d", e.status) }
func (e *statusError) HTTPStatusCode() int { return e.status }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "no such key",
			err:      &s3types.NoSuchKey{},
			expected: storage.ErrObjectNotFound,
		},
		{
			name:     "not found",
			err:      &s3types.NotFound{},
			expected: storage.ErrObjectNotFound,
		},
		{
			name:     "wrapped no such key",
			err:      fmt.Errorf("operation failed: %w", &s3types.NoSuchKey{}),
			expected: storage.ErrObjectNotFound,
		},
		{
			name:     "forbidden response",
			err:      &statusError{status: 403},
			expected: storage.ErrAccessDenied,
		},
		{
			name:     "not found response",
			err:      &statusError{status: 404},
			expected: storage.ErrObjectNotFound,
		},
		{
			name:     "server error is not classified",
			err:      &statusError{status: 500},
			expected: nil,
		},
		{
			name:     "plain error is not classified",
			err:      errors.New("connection reset"),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyError(tt.err))
		})
	}
}

func TestNewSessionClient_RequiresFullTriplet(t *testing.T) {
	cfg := &config.AWSConfig{Region: "us-east-1"}
	logger := mocks.NoopLogger{}
	metrics := mocks.NoopMetrics{}

	tests := []struct {
		name         string
		accessKey    string
		secretKey    string
		sessionToken string
	}{
		{"missing access key", "", "secret", "token"},
		{"missing secret key", "AKID", "", "token"},
		{"missing session token", "AKID", "secret", ""},
		{"all missing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewSessionClient(context.Background(), cfg, tt.accessKey, tt.secretKey, tt.sessionToken, logger, metrics)
			assert.Nil(t, client)
			assert.Error(t, err)
		})
	}
}

func TestNewSessionClient_BuildsClient(t *testing.T) {
	cfg := &config.AWSConfig{
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		ForcePathStyle: true,
	}

	client, err := NewSessionClient(context.Background(), cfg, "AKID", "secret", "token", mocks.NoopLogger{}, mocks.NoopMetrics{})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.NotNil(t, client.s3Client)
	assert.NotNil(t, client.uploader)
}

func TestNewClient_BuildsClient(t *testing.T) {
	cfg := &config.AWSConfig{Region: "us-east-1"}

	client, err := NewClient(context.Background(), cfg, mocks.NoopLogger{}, mocks.NoopMetrics{})
	require.NoError(t, err)
	require.NotNil(t, client)
}
