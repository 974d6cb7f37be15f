package storage

import (
	"context"
	"io"
	"time"
)

// DocumentStore abstracts where application documents live. The local
// implementation serves development and tests; a cloud bucket can slot in
// behind the same contract.
type DocumentStore interface {
	// GenerateUploadURL returns a short-lived URL the client PUTs the file to.
	GenerateUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GenerateDownloadURL returns a short-lived URL the file can be fetched from.
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size.
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage.
	DeleteFile(ctx context.Context, key string) error

	// SaveFile persists a file (used by the local upload handler).
	SaveFile(key string, reader io.Reader) error

	// ReadFile opens a file for reading (used by the local download handler).
	ReadFile(key string) (io.ReadCloser, error)
}
