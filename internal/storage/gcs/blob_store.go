// Package gcs provides a BlobStore backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Config captures the parameters required to connect to GCS.
type Config struct {
	Bucket string
	// CacheControl is set on every uploaded export when non-empty.
	CacheControl string
}

// objectWriter is the part of *storage.Writer the store relies on.
type objectWriter interface {
	io.Writer
	Close() error
}

type writerFactory func(ctx context.Context, bucket, path, contentType, cacheControl string) objectWriter

// BlobStore writes artifacts to a configured GCS bucket.
type BlobStore struct {
	bucket       string
	cacheControl string
	newWriter    writerFactory
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	return newBlobStore(cfg, clientWriter(client))
}

func newBlobStore(cfg Config, factory writerFactory) (*BlobStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{bucket: cfg.Bucket, cacheControl: cfg.CacheControl, newWriter: factory}, nil
}

func clientWriter(client *storage.Client) writerFactory {
	return func(ctx context.Context, bucket, path, contentType, cacheControl string) objectWriter {
		w := client.Bucket(bucket).Object(path).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = cacheControl
		return w
	}
}

// PutObject uploads data to the configured bucket and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	writer := s.newWriter(ctx, s.bucket, path, contentType, s.cacheControl)
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}
