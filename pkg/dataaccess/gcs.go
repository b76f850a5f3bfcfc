package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	// EnvGCSCredentials holds the service account JSON for the GCS mirror.
	EnvGCSCredentials = "GCS_CREDENTIALS"
)

type gcsImpl struct {
	// gcs is the Google Cloud Storage client.
	gcs *storage.Client

	// bucket is the name of the bucket to use.
	bucket string
}

// NewGCS returns a Storage writing to the given GCS bucket.
func NewGCS(gcs *storage.Client, bucket string) Storage {
	return &gcsImpl{
		gcs:    gcs,
		bucket: bucket,
	}
}

func (s *gcsImpl) SaveFile(ctx context.Context, filePath string, file []byte) error {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "gcs", "query": "save_file"}))
	defer t.ObserveDuration()

	bkt := s.gcs.Bucket(s.bucket)

	w := bkt.Object(filePath).NewWriter(ctx)
	if _, err := w.Write(file); err != nil {
		return fmt.Errorf("error writing file to bucket: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	return nil
}

func (s *gcsImpl) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "gcs", "query": "download_file"}))
	defer t.ObserveDuration()

	bkt := s.gcs.Bucket(s.bucket)

	r, err := bkt.Object(filePath).NewReader(ctx)
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

func (s *gcsImpl) DeleteFile(ctx context.Context, filePath string) error {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "gcs", "query": "delete_file"}))
	defer t.ObserveDuration()

	bkt := s.gcs.Bucket(s.bucket)

	if err := bkt.Object(filePath).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	return nil
}

func (s *gcsImpl) Purge(ctx context.Context, from time.Time) (int, error) {
	// Start the prometheus timer.
	t := prometheus.NewTimer(StorageLatency.With(prometheus.Labels{"impl": "gcs", "query": "purge"}))
	defer t.ObserveDuration()

	bkt := s.gcs.Bucket(s.bucket)

	it := bkt.Objects(ctx, nil)

	count := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		} else if err != nil {
			return 0, fmt.Errorf("error getting next file: %w", err)
		}

		// Ignore all non-SQL files.
		if !strings.HasSuffix(attrs.Name, ".sql") {
			continue
		}

		// Slice files are named after their table, so age comes from the
		// object metadata rather than the name.
		if attrs.Updated.After(from) {
			continue
		}

		if err := bkt.Object(attrs.Name).Delete(ctx); err != nil {
			return 0, fmt.Errorf("error deleting file: %w", err)
		}

		count++
	}

	return count, nil
}

// ConnectGCS connects to the given bucket using the credentials held in the
// GCS_CREDENTIALS environment variable.
func ConnectGCS(ctx context.Context, gcsBucket string) (Storage, error) {
	gcsCredentials := os.Getenv(EnvGCSCredentials)
	if gcsCredentials == "" {
		return nil, errors.New("no GCS credentials provided")
	}

	if gcsBucket == "" {
		return nil, errors.New("no GCS bucket provided")
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(gcsCredentials)))
	if err != nil {
		return nil, fmt.Errorf("error connecting to GCS: %w", err)
	}

	// Validate that the bucket exists before handing the client out.
	if _, err := client.Bucket(gcsBucket).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("error validating GCS bucket: %w", err)
	}

	sc := NewGCS(client, gcsBucket)
	slog.Debug("Connected to GCS")
	return sc, nil
}
