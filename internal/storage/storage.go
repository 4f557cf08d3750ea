// Package storage holds the flat upload namespace behind a small interface so the
// service can run on a local directory, an S3-compatible bucket or in memory.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotExist is returned when no object is stored under the requested key.
	ErrNotExist = errors.New("object does not exist")
	// ErrInvalidKey is returned for keys that are not a single path element.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, -1 otherwise.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is a flat key/value store for uploaded files. Keys are filenames.
// Implementations must be safe for concurrent use and must never expose a
// partially written object to Get, Stat or List.
type Storage interface {
	// Ensure prepares the backend (creates the directory or bucket if missing).
	Ensure(ctx context.Context) error
	// Ping reports whether the backend is reachable without mutating it.
	Ping(ctx context.Context) error
	// Put stores r under key, replacing any existing object of the same key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info or ErrNotExist.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List returns every stored object. Order is backend-defined.
	List(ctx context.Context) ([]ObjectInfo, error)
	// DeleteAll removes every stored object, continuing past individual failures.
	// It returns how many objects were removed and the joined errors, if any.
	DeleteAll(ctx context.Context) (int, error)
}

// ValidKey reports whether name can be used as a key: a single, non-empty path
// element without separators or NUL bytes.
func ValidKey(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

var timeNow = time.Now

// contentTypeFor falls back to the extension, then to application/octet-stream.
func contentTypeFor(key, given string) string {
	if given != "" {
		return given
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
