// Package objstore abstracts the object store that holds user uploads
// (avatars, banners, post images). Two backends exist: local filesystem for
// development and S3 for production, selected by the storage_type config key.
package objstore

import (
	"context"
	"io"
)

// Store is the narrow contract the application needs from object storage.
type Store interface {
	// Put writes one object under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes one object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteTree removes every object under the given key prefix and
	// returns how many objects were removed. An empty prefix tree is not
	// an error.
	DeleteTree(ctx context.Context, prefix string) (int, error)
}
