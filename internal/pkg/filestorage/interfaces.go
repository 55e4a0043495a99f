package filestorage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key         string    `json:"key"`
	ContentType string    `json:"contentType"`
	Filename    string    `json:"filename,omitempty"` // original upload name
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"storedAt"`
}

// ObjectStore is a flat key/value blob store for submission files.
// It has no transactional link to the relational store.
type ObjectStore interface {
	// Put writes r under key, replacing any existing object
	Put(ctx context.Context, key string, r io.Reader, contentType, filename string) (*ObjectInfo, error)

	// Get opens the object stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
