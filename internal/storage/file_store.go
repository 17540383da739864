package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore keeps blobs on disk, one directory per namespace. Both
// directories are created at startup if missing.
type FileStore struct {
	dirs map[Namespace]string
}

// NewFileStore creates the namespace directories and returns the store.
func NewFileStore(booksDir, coversDir string) (*FileStore, error) {
	dirs := map[Namespace]string{
		NamespaceBooks:  booksDir,
		NamespaceCovers: coversDir,
	}
	for ns, dir := range dirs {
		if dir == "" {
			return nil, fmt.Errorf("storage: %s directory is required", ns)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", ns, err)
		}
	}
	return &FileStore{dirs: dirs}, nil
}

// Put writes the blob to a temp file in the target directory and renames it
// into place, so a concurrent Open never observes a partial write.
func (f *FileStore) Put(_ context.Context, ns Namespace, key string, r io.Reader, _ int64) error {
	target, err := f.path(ns, key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dirs[ns], ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

// Open returns a reader over the blob, or ErrNotFound.
func (f *FileStore) Open(_ context.Context, ns Namespace, key string) (io.ReadCloser, error) {
	target, err := f.path(ns, key)
	if err != nil {
		return nil, ErrNotFound
	}
	file, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return file, nil
}

// Delete removes the blob if present; a missing blob is not an error.
func (f *FileStore) Delete(_ context.Context, ns Namespace, key string) error {
	target, err := f.path(ns, key)
	if err != nil {
		return nil
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (f *FileStore) path(ns Namespace, key string) (string, error) {
	dir, ok := f.dirs[ns]
	if !ok {
		return "", fmt.Errorf("storage: unknown namespace %q", ns)
	}
	safe, err := SafeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, safe), nil
}
