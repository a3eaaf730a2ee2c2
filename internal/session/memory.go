package session

import (
	"context"
	"sync"
	"time"

	"ai-study-planner/internal/planner"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local ResultStore.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store whose entries live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, batch planner.Batch) (string, error) {
	data, err := encode(batch)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}

	id := newID()
	s.entries[id] = memoryEntry{data: data, expires: now.Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (planner.Batch, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.now().After(e.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return planner.Batch{}, ErrNotFound
	}
	return decode(e.data)
}

func (s *MemoryStore) Close() error { return nil }
