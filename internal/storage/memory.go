package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in process memory. It is the default driver; no
// upload outlives the process.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.blobs[cleanKey] = buf
	s.mu.Unlock()
	return cleanKey, nil
}

func (s *MemoryStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[cleanKey]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *MemoryStore) DeletePrefix(ctx context.Context, prefix string) error {
	cleanPrefix, err := sanitizeKey(prefix)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.blobs {
		if key == cleanPrefix || strings.HasPrefix(key, cleanPrefix+"/") {
			delete(s.blobs, key)
		}
	}
	return nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

var _ BlobStore = (*MemoryStore)(nil)
