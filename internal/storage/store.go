package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Open when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the blob store attachments are written to.
type ObjectStore interface {
	// Put stores size bytes from r under bucket/key.
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	// Open returns the stored object; callers must close it.
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// Remove deletes bucket/key. Removing a missing key is not an error.
	Remove(ctx context.Context, bucket, key string) error
	// URL returns the public URL of bucket/key.
	URL(bucket, key string) string
}
