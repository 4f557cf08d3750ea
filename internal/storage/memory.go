package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// memoryStorage keeps objects in process memory. Nothing survives a restart.
type memoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemory returns an empty in-memory Storage.
func NewMemory() Storage {
	return &memoryStorage{objects: make(map[string]memoryObject)}
}

func (m *memoryStorage) Ensure(_ context.Context) error { return nil }

func (m *memoryStorage) Ping(_ context.Context) error { return nil }

// Put buffers the whole body before publishing it under the lock.
func (m *memoryStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if !ValidKey(key) {
		return ObjectInfo{}, ErrInvalidKey
	}
	data, err := io.ReadAll(readerWithContext(ctx, r))
	if err != nil {
		return ObjectInfo{}, err
	}
	obj := memoryObject{
		data:        data,
		contentType: contentTypeFor(key, opt.ContentType),
		modTime:     timeNow(),
	}

	m.mu.Lock()
	m.objects[key] = obj
	m.mu.Unlock()

	return obj.info(key), nil
}

func (m *memoryStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ObjectInfo{}, ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.info(key), nil
}

func (m *memoryStorage) Stat(_ context.Context, key string) (ObjectInfo, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return ObjectInfo{}, ErrNotExist
	}
	return obj.info(key), nil
}

func (m *memoryStorage) List(_ context.Context) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ObjectInfo, 0, len(m.objects))
	for k, obj := range m.objects {
		out = append(out, obj.info(k))
	}
	return out, nil
}

func (m *memoryStorage) DeleteAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.objects)
	m.objects = make(map[string]memoryObject)
	return n, nil
}

func (o memoryObject) info(key string) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		LastModified: o.modTime,
	}
}
