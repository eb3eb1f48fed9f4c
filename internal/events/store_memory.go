package events

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"incentra/pkg/requestcontext"
)

// InMemoryStore keeps outbox events in a slice. Used in tests and when no
// Postgres DSN is configured; without Postgres the relay drains this store
// directly.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

// NewInMemoryStore creates an empty in-memory outbox.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListUnpublished(ctx context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, ev := range s.events {
		if ev.PublishedAt != nil {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := requestcontext.Now(ctx)
	marked := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for i := range s.events {
		if marked[s.events[i].ID] && s.events[i].PublishedAt == nil {
			t := now
			s.events[i].PublishedAt = &t
		}
	}
	return nil
}
