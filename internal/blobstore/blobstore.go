// Package blobstore is the Asset Upload Orchestrator's one dependency on
// durable binary storage: put, delete, and time-limited download-URL
// signing for a single blob path. Path construction and filename
// sanitization live in the orchestrator; this package only moves bytes.
package blobstore

import (
	"context"
	"io"
	"time"
)

// BlobStore puts, deletes, and signs download URLs for blobs addressed by
// an opaque path (container-relative, already sanitized by the caller).
type BlobStore interface {
	Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, path string) error
	SignURL(ctx context.Context, path string, validity time.Duration) (string, error)
}
