package dataset

import (
	"context"
	"io"
	"time"
)

// BlobStore writes export artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// RecordStore mirrors a normalized snapshot into a database.
type RecordStore interface {
	ReplaceRecords(ctx context.Context, records []Record) error
}

// Hasher computes digests for export ETags.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces export run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
