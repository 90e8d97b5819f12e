package keystore

import (
	"context"
	"sync"
)

// MemoryStore keeps keys for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[name]
	if !ok {
		return "", ErrNotFound
	}

	return key, nil
}

// PutIfAbsent implements Store.
func (s *MemoryStore) PutIfAbsent(_ context.Context, name, key string) (string, error) {
	err := validateName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.keys[name]; ok {
		return existing, nil
	}

	s.keys[name] = key

	return key, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, name)

	return nil
}
