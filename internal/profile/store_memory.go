package profile

import (
	"context"
	"sort"
	"sync"

	"incentra/pkg/requestcontext"
)

// InMemoryStore keeps profiles in a map. Used in tests and when no Postgres
// DSN is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	profiles map[int64]Profile
}

// NewInMemoryStore creates an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, profiles: make(map[int64]Profile)}
}

func (s *InMemoryStore) Save(ctx context.Context, p *Profile) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := requestcontext.Now(ctx)
	saved := cloneProfile(*p)
	saved.UpdatedAt = now
	if saved.ID == 0 {
		saved.ID = s.nextID
		s.nextID++
		saved.CreatedAt = now
	} else if existing, ok := s.profiles[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	}
	s.profiles[saved.ID] = saved

	out := cloneProfile(saved)
	return &out, nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id int64) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneProfile(p)
	return &out, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

func cloneProfile(p Profile) Profile {
	out := p
	out.IndustryCodes = append([]string(nil), p.IndustryCodes...)
	if p.CapexCents != nil {
		v := *p.CapexCents
		out.CapexCents = &v
	}
	return out
}
