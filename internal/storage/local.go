package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// stagingDir holds in-flight uploads inside the upload directory so the final
// rename stays on one filesystem. It is never listed.
const stagingDir = ".partial"

// localStorage implements Storage on a single flat directory.
type localStorage struct {
	dir string
}

// NewLocal returns a Storage rooted at dir. Call Ensure before use.
func NewLocal(dir string) Storage {
	return &localStorage{dir: dir}
}

// Ensure creates the upload directory and its staging area when missing.
func (l *localStorage) Ensure(_ context.Context) error {
	if _, err := os.Stat(l.dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(l.dir, stagingDir), 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	return nil
}

func (l *localStorage) Ping(_ context.Context) error {
	st, err := os.Stat(l.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", l.dir)
	}
	return nil
}

// Put writes into the staging area, flushes, then renames into place so readers
// see either the previous content or the complete new content.
func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if !ValidKey(key) || key == stagingDir {
		return ObjectInfo{}, ErrInvalidKey
	}
	staging := filepath.Join(l.dir, stagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create staging dir: %w", err)
	}

	tmp, err := os.CreateTemp(staging, "upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if err != nil {
		cleanup()
		return ObjectInfo{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ObjectInfo{}, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ObjectInfo{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(l.dir, key)); err != nil {
		_ = os.Remove(tmpName)
		return ObjectInfo{}, fmt.Errorf("publish file: %w", err)
	}

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  contentTypeFor(key, opt.ContentType),
		LastModified: timeNow(),
	}, nil
}

// Get describes the opened handle, so the size always matches the bytes the
// reader yields even if the key is replaced concurrently.
func (l *localStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if !ValidKey(key) || key == stagingDir {
		return nil, ObjectInfo{}, ErrNotExist
	}
	f, err := os.Open(filepath.Join(l.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotExist
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, err
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, ObjectInfo{}, ErrNotExist
	}
	return f, fileInfo(key, st), nil
}

func (l *localStorage) Stat(_ context.Context, key string) (ObjectInfo, error) {
	if !ValidKey(key) || key == stagingDir {
		return ObjectInfo{}, ErrNotExist
	}
	st, err := os.Stat(filepath.Join(l.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ObjectInfo{}, ErrNotExist
		}
		return ObjectInfo{}, err
	}
	if !st.Mode().IsRegular() {
		return ObjectInfo{}, ErrNotExist
	}
	return fileInfo(key, st), nil
}

func fileInfo(key string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  contentTypeFor(key, ""),
		LastModified: st.ModTime(),
	}
}

// List returns regular files only; the staging area and any sub-directories are skipped.
func (l *localStorage) List(_ context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info := ObjectInfo{Key: e.Name(), ContentType: contentTypeFor(e.Name(), "")}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
			info.LastModified = fi.ModTime()
		}
		out = append(out, info)
	}
	return out, nil
}

// DeleteAll removes every entry of the upload directory, staging included.
// Only stored files count towards the returned total.
func (l *localStorage) DeleteAll(_ context.Context) (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	var (
		deleted int
		errs    []error
	)
	for _, e := range entries {
		p := filepath.Join(l.dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", e.Name(), err))
			continue
		}
		if e.Name() != stagingDir {
			deleted++
		}
	}
	return deleted, errors.Join(errs...)
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	if ctx == nil {
		return r
	}
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
