// Package mocks provides testify mocks for the storage contract.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/el-feo/content-processing-sub001/storage"
)

// MockObjectStorage is a mock implementation of ObjectStorage interface
type MockObjectStorage struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockObjectStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectMetadata, error) {
	args := m.Called(ctx, bucket, key)

	var reader io.ReadCloser
	var metadata *storage.ObjectMetadata

	if args.Get(0) != nil {
		reader = args.Get(0).(io.ReadCloser)
	}
	if args.Get(1) != nil {
		metadata = args.Get(1).(*storage.ObjectMetadata)
	}

	return reader, metadata, args.Error(2)
}

// Put mocks the Put method
func (m *MockObjectStorage) Put(ctx context.Context, bucket, key string, reader io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, key, reader, contentType)
	return args.Error(0)
}

// Exists mocks the Exists method
func (m *MockObjectStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}
