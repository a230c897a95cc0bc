package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStorage keeps uploads in process memory. Used with the "memory"
// store driver and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStorage(publicBaseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (s *MemoryStorage) Upload(ctx context.Context, data []byte, key, mimeType string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: mimeType}
	return s.baseURL + "/api/v1/images/" + key, nil
}

func (s *MemoryStorage) Open(ctx context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}
