package storage

import (
	"context"
	"io"
)

// Store persists processed clip artifacts keyed by clip id.
type Store interface {
	// Save writes the artifact for the given clip id.
	Save(ctx context.Context, clipID string, r io.Reader) error

	// Open returns the artifact stream and its size. The caller must close
	// the returned reader. A missing artifact yields domain.ErrNotFound.
	Open(ctx context.Context, clipID string) (io.ReadCloser, int64, error)

	// Exists reports whether an artifact is stored for the clip id.
	Exists(ctx context.Context, clipID string) (bool, error)

	// Delete removes the artifact. Deleting a missing artifact is not an error.
	Delete(ctx context.Context, clipID string) error

	// URL returns the public URL the artifact is served from.
	URL(clipID string) string
}
