package storage

import (
	"context"
)

// Container is an opaque handle to a resolved durable-storage destination
// (a bucket for the flat backend, a folder prefix for the hierarchical
// one). Callers obtain it from EnsureContainer and pass it back to Put.
type Container string

// BlobStore is the narrow contract the relay worker depends on. One
// implementation per durable backend; selected once at startup.
type BlobStore interface {
	// EnsureContainer resolves (creating if needed) the destination
	// container. Idempotent.
	EnsureContainer(ctx context.Context, name string) (Container, error)
	// Put streams the file at localPath into the container under
	// filename, tagged with mimeType, and returns the remote handle.
	Put(ctx context.Context, c Container, localPath, filename, mimeType string) (string, error)
	// Get downloads the object behind handle to destPath.
	Get(ctx context.Context, handle, destPath string) error
	Delete(ctx context.Context, handle string) error
}
