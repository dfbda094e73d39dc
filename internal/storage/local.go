package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kanade/shortform/internal/domain"
)

// LocalStore implements Store on the local filesystem. Artifacts are served
// as static files under /videos by the HTTP server.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a filesystem-backed artifact store rooted at dir.
// baseURL is the externally visible origin of the backend.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) path(clipID string) string {
	return filepath.Join(s.dir, clipID+".mp4")
}

// Save writes the artifact for the given clip id.
func (s *LocalStore) Save(ctx context.Context, clipID string, r io.Reader) error {
	f, err := os.Create(s.path(clipID))
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write artifact file: %w", err)
	}
	return nil
}

// Open returns the artifact stream and its size.
func (s *LocalStore) Open(ctx context.Context, clipID string) (io.ReadCloser, int64, error) {
	f, err := os.Open(s.path(clipID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("artifact %s: %w", clipID, domain.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("open artifact %s: %w", clipID, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat artifact %s: %w", clipID, err)
	}
	return f, info.Size(), nil
}

// Exists reports whether the artifact file is present.
func (s *LocalStore) Exists(ctx context.Context, clipID string) (bool, error) {
	_, err := os.Stat(s.path(clipID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact %s: %w", clipID, err)
	}
	return true, nil
}

// Delete removes the artifact file if present.
func (s *LocalStore) Delete(ctx context.Context, clipID string) error {
	if err := os.Remove(s.path(clipID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact %s: %w", clipID, err)
	}
	return nil
}

// URL returns the static file URL for the clip.
func (s *LocalStore) URL(clipID string) string {
	return fmt.Sprintf("%s/videos/%s.mp4", s.baseURL, clipID)
}
