package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps the latest bucket of each resource in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	bucket int64
	value  []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.Resource]
	if !ok {
		return nil, false, nil
	}
	if e.bucket != key.Bucket {
		// stale bucket
		if e.bucket < key.Bucket {
			delete(s.entries, key.Resource)
		}
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.Resource] = memEntry{bucket: key.Bucket, value: append([]byte(nil), value...)}
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, resource)
	return nil
}

// Len returns the number of cached resources.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }
