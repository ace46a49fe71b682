// Package storage holds the blob stores that keep uploaded originals for preview.
package storage

import (
	"context"
	"io"
)

// BlobStore stores raw file bytes under opaque keys.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns domain.ErrBlobNotFound when the key is unknown.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}
