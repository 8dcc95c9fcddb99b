package services

import (
	"context"
	"io"
)

// DocumentStore defines the interface for the generated-document archive.
// This allows switching between S3 and a no-op implementation when no
// archive is configured.
type DocumentStore interface {
	// UploadDocument uploads a rendered PDF and returns the storage key
	UploadDocument(ctx context.Context, filename string, data []byte) (string, error)

	// GetFileURL returns the full URL for a given key
	GetFileURL(key string) string

	// GetObject retrieves an archived document
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
}
