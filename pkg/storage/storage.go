// Package storage keeps export files produced by unattended runs.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // relative to the namespace directory
	Sources     []string  `json:"sources,omitempty"` // fingerprints of the documents the file was built from
	CreatedAt   time.Time `json:"created_at"`
}

// Storage stores files grouped by namespace.
type Storage interface {
	// Put stores the content of r and returns its metadata.
	Put(ctx context.Context, namespace string, info FileInfo, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a stored file and its metadata.
	Open(ctx context.Context, namespace string, id uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file and its metadata.
	Delete(ctx context.Context, namespace string, id uuid.UUID) error

	// List returns the files of a namespace, oldest first.
	List(ctx context.Context, namespace string) ([]*FileInfo, error)

	// GetInfo returns metadata for a file.
	GetInfo(ctx context.Context, namespace string, id uuid.UUID) (*FileInfo, error)
}
