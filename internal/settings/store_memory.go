package settings

import (
	"context"
	"sync"
)

// InMemoryStore keeps settings documents in a map. Used in tests and when no
// Postgres DSN is configured.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewInMemoryStore creates an empty in-memory settings store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string][]byte)}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(doc))
	copy(out, doc)
	return out, nil
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := make([]byte, len(value))
	copy(doc, value)
	s.docs[key] = doc
	return nil
}
