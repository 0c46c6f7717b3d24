// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
)

// ObjectStorage is the source collections are loaded from. Keys are
// slash separated and relative to the configured root or prefix.
type ObjectStorage interface {
	// List returns every collection document below the root.
	List(ctx context.Context) ([]StorageObject, error)

	// GetReader opens a document. The caller closes the reader.
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether a document is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject represents a collection document in object storage.
type StorageObject struct {
	Key          string // Object key/path
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp
	ETag         string // Content hash
}

// StorageType names a storage backend in configuration.
type StorageType string

// Storage backends.
const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeAzure StorageType = "azure"
	StorageTypeHTTP  StorageType = "http"
	StorageTypeLocal StorageType = "local"
)
