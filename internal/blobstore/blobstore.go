// Package blobstore abstracts attachment byte storage. The production
// backend is an S3-compatible object store (MinIO); tests use the in-memory
// implementation.
package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blobstore: object not found")

// Store is the interface consumed by the attachment service. All calls are
// fallible remote operations; callers propagate failures rather than retry.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
