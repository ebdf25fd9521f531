// Package storage defines the object-storage contract used by the fetch and
// publish stages. Implementations live in subpackages; callers depend only
// on the ObjectStorage interface so tests can substitute mocks.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Common storage errors
var (
	// ErrObjectNotFound is returned when an object is not found in storage
	ErrObjectNotFound = errors.New("object not found")

	// ErrAccessDenied is returned when the caller's credentials do not
	// permit the requested operation
	ErrAccessDenied = errors.New("access denied")
)

// ObjectMetadata represents metadata associated with stored objects
type ObjectMetadata struct {
	ContentType   string
	ContentLength int64
	LastModified  time.Time
	ETag          string
}

// ObjectStorage defines the interface for object storage operations.
// This interface abstracts the underlying storage implementation,
// allowing for easy swapping between different providers (S3, MinIO, etc.)
type ObjectStorage interface {
	// Get retrieves an object by bucket and key. The caller owns the
	// returned reader and must close it. Missing objects are reported
	// as ErrObjectNotFound, permission failures as ErrAccessDenied.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, *ObjectMetadata, error)

	// Put stores an object under the given bucket and key with the
	// supplied content type.
	Put(ctx context.Context, bucket, key string, reader io.Reader, contentType string) error

	// Exists checks if an object exists in the specified bucket
	Exists(ctx context.Context, bucket, key string) (bool, error)
}
