package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asset-store/internal/logging"
)

// LocalStore is an ObjectStore backed by a directory on disk, used for
// development and tests. URLs are baseURL + "/" + key.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore creates a filesystem-backed object store rooted at
// baseDir. The directory is created if missing.
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	logging.Info("Local store initialized: dir=%s", baseDir)
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BaseURL returns the URL prefix under which this store's objects live.
func (l *LocalStore) BaseURL() string {
	return l.baseURL
}

// Upload writes data under key below the store directory.
func (l *LocalStore) Upload(_ context.Context, key string, data []byte, _ string) (url string, err error) {
	start := time.Now()
	defer func() { recordOp("upload", start, err) }()

	path, err := l.pathForKey(key)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object dir: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}

	return l.baseURL + "/" + key, nil
}

// Download reads the object bytes behind a URL.
func (l *LocalStore) Download(_ context.Context, url string) (data []byte, err error) {
	start := time.Now()
	defer func() { recordOp("download", start, err) }()

	key, err := l.keyFromURL(url)
	if err != nil {
		return nil, err
	}
	path, err := l.pathForKey(key)
	if err != nil {
		return nil, err
	}

	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		err = fmt.Errorf("%w: %s", ErrNotFound, key)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object behind a URL; a missing object is ignored.
func (l *LocalStore) Delete(_ context.Context, url string) (err error) {
	start := time.Now()
	defer func() { recordOp("delete", start, err) }()

	key, err := l.keyFromURL(url)
	if err != nil {
		return err
	}
	path, err := l.pathForKey(key)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// keyFromURL reconstructs the object key by stripping the base URL.
func (l *LocalStore) keyFromURL(url string) (string, error) {
	key := strings.TrimPrefix(url, l.baseURL+"/")
	if key == url || key == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return key, nil
}

// pathForKey maps a key to a path under baseDir, rejecting keys that
// would escape it.
func (l *LocalStore) pathForKey(key string) (string, error) {
	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(l.baseDir)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return path, nil
}
