package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore persists transcoded image bytes under a key and returns
// the durable URL they are reachable at.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// LocalStore is an ObjectStore backed by a local directory, for running
// the pipeline end-to-end without cloud credentials.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a filesystem-backed object store rooted at dir.
// Returned URLs are baseURL + "/" + key.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Put writes data under dir/key and returns its URL.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
