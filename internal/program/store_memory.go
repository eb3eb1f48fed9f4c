package program

import (
	"context"
	"sort"
	"sync"

	"incentra/pkg/requestcontext"
)

// InMemoryStore keeps the catalog in a map. Used in tests and when no
// Postgres DSN is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]Record
}

// NewInMemoryStore creates an empty in-memory program store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, records: make(map[int64]Record)}
}

func (s *InMemoryStore) Save(ctx context.Context, rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := cloneRecord(*rec)
	if saved.ID == 0 {
		saved.ID = s.nextID
		s.nextID++
		saved.CreatedAt = requestcontext.Now(ctx)
	} else if existing, ok := s.records[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	}
	s.records[saved.ID] = saved

	out := cloneRecord(saved)
	return &out, nil
}

func (s *InMemoryStore) GetByID(ctx context.Context, id int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (s *InMemoryStore) GetByUID(ctx context.Context, uid string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if uid == "" {
		return nil, ErrNotFound
	}
	for _, rec := range s.records {
		if rec.UID == uid {
			out := cloneRecord(rec)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if matchesFilter(rec, filter) {
			out = append(out, cloneRecord(rec))
		}
	}
	// Deterministic listing order regardless of map iteration.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func matchesFilter(rec Record, filter Filter) bool {
	if filter.CountryCode != "" && rec.CountryCode != filter.CountryCode {
		return false
	}
	if filter.Jurisdiction != "" && rec.Jurisdiction != filter.Jurisdiction {
		return false
	}
	if filter.IndustryCode != "" {
		found := false
		for _, code := range rec.IndustryCodes {
			if code == filter.IndustryCode {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneRecord(rec Record) Record {
	out := rec
	out.IndustryCodes = append([]string(nil), rec.IndustryCodes...)
	out.Benefits = append([]Benefit(nil), rec.Benefits...)
	out.Tags = append([]Tag(nil), rec.Tags...)
	if rec.SourceID != nil {
		v := *rec.SourceID
		out.SourceID = &v
	}
	if rec.Score != nil {
		v := *rec.Score
		out.Score = &v
	}
	return out
}
