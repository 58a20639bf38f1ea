package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Object is a blob kept by MemoryStorage.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStorage keeps objects in process memory. Used for development
// without MinIO and in tests.
type MemoryStorage struct {
	publicURL string

	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStorage(publicURL string) *MemoryStorage {
	return &MemoryStorage{publicURL: strings.TrimRight(publicURL, "/"), objects: map[string]Object{}}
}

func (m *MemoryStorage) Put(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("short object: read %d of %d bytes", len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = Object{Data: data, ContentType: contentType}
	return nil
}

func (m *MemoryStorage) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), nil
}

func (m *MemoryStorage) Remove(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *MemoryStorage) URL(bucket, key string) string {
	return m.publicURL + "/" + bucket + "/" + escapeKey(key)
}

// Get returns a stored object, for tests.
func (m *MemoryStorage) Get(bucket, key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
