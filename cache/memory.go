package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-process BlobStore, used when caching is disabled and
// in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), body...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte{}, body...)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.blobs)
	s.blobs = make(map[string][]byte)
	return n, nil
}
