// Package store defines the object-store abstraction the gist layer is built
// on: opaque byte payloads addressed by string keys, with metadata tags. A
// Store knows nothing about gists. Implementations live in the s3, postgres
// and memory subpackages.
package store

import "context"

// Tags are string key-value pairs stamped on an object at write time. They
// support external inventory scans without a full body read.
type Tags map[string]string

// ListResult is one page of a cursor-paginated key listing.
type ListResult struct {
	Keys       []string
	NextCursor string
	Truncated  bool
}

// Store is a thin key/value abstraction over a blob bucket.
//
// Error contract: an absent key is reported as common.ErrNotFound (Get only;
// Delete is idempotent and Head reports absence as false). Every transport or
// storage fault is wrapped with common.ErrStorageFault so callers can match
// it with errors.Is. Implementations never retry internally; retries, if any,
// belong to the layer above.
type Store interface {
	// Put stores data under key with the given content type and tags,
	// overwriting any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string, tags Tags) error

	// Get returns the bytes stored under key, or common.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Head reports whether an object exists under key without fetching it.
	Head(ctx context.Context, key string) (bool, error)

	// List returns up to limit keys starting with prefix, after the given
	// cursor. An empty cursor starts from the beginning; the returned
	// NextCursor resumes the scan when Truncated is true.
	List(ctx context.Context, prefix string, limit int, cursor string) (ListResult, error)
}
