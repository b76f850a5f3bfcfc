package dataaccess

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type localImpl struct{}

// NewLocal returns a Storage writing to the local filesystem.
func NewLocal() Storage {
	return &localImpl{}
}

func (s *localImpl) SaveFile(_ context.Context, filePath string, file []byte) error {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "local", "query": "save_file"}))
	defer t.ObserveDuration()

	// Create any missing parent directories.
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return fmt.Errorf("error creating directories: %w", err)
	}

	w, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if _, err := w.Write(file); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	return nil
}

func (s *localImpl) DownloadFile(_ context.Context, filePath string) ([]byte, error) {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "local", "query": "download_file"}))
	defer t.ObserveDuration()

	r, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	file, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if err := r.Close(); err != nil {
		return nil, fmt.Errorf("error closing file: %w", err)
	}

	return file, nil
}

func (s *localImpl) DeleteFile(_ context.Context, filePath string) error {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "local", "query": "delete_file"}))
	defer t.ObserveDuration()

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	return nil
}

func (s *localImpl) Purge(_ context.Context, from time.Time) (int, error) {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "local", "query": "purge"}))
	defer t.ObserveDuration()

	// Delete generated SQL files in the working directory older than the
	// purge time.
	files, err := os.ReadDir(".")
	if err != nil {
		return 0, fmt.Errorf("error reading directory: %w", err)
	}

	count := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		// Ignore all non-SQL files.
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		fi, err := file.Info()
		if err != nil {
			return 0, fmt.Errorf("error getting file info: %w", err)
		}

		if fi.ModTime().Before(from) {
			if err := os.Remove(file.Name()); err != nil {
				return 0, fmt.Errorf("error deleting file: %w", err)
			}
			count++
		}
	}

	return count, nil
}
