package dataaccess

import (
	"context"
	"time"
)

// Storage is where generated slice files end up: the local filesystem by
// default, or a GCS bucket when mirroring is enabled.
type Storage interface {
	// SaveFile writes a file to the storage. This replaces any existing file
	// with the same name.
	SaveFile(ctx context.Context, filePath string, file []byte) error

	// DownloadFile reads a file back from the storage.
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)

	// DeleteFile deletes a file from the storage.
	DeleteFile(ctx context.Context, filePath string) error

	// Purge deletes generated SQL files last modified before the given time
	// and returns how many were removed.
	Purge(ctx context.Context, from time.Time) (int, error)
}
