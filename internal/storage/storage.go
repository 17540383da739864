package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Namespace is a logical partition of the blob store. Book PDFs and cover
// images never share keys.
type Namespace string

const (
	NamespaceBooks  Namespace = "books"
	NamespaceCovers Namespace = "covers"
)

var (
	// ErrNotFound is returned by Open when no blob exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey rejects keys that would escape their namespace.
	ErrInvalidKey = errors.New("invalid blob key")
)

// BlobStore is a key-value byte store over the two namespaces. Put
// overwrites, Open returns ErrNotFound for missing blobs, Delete of a
// missing blob is a no-op.
type BlobStore interface {
	Put(ctx context.Context, ns Namespace, key string, r io.Reader, size int64) error
	Open(ctx context.Context, ns Namespace, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, ns Namespace, key string) error
}

// SafeKey normalizes a client-supplied filename into a blob key. Cover keys
// come straight from upload filenames, so anything resembling a path is
// reduced to its base name before it can touch the filesystem.
func SafeKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", ErrInvalidKey
	}
	return name, nil
}
