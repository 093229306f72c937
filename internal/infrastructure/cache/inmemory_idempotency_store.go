package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryIdempotencyStore remembers run keys inside one process. Expired
// keys are swept on write, so the map only holds keys of live runs.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{expires: make(map[string]time.Time), now: time.Now}
}

// MarkProcessed claims key for ttl. It returns false while an earlier claim
// is still live.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if _, live := s.expires[key]; live {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Release drops a claim so a failed run is retried on the next check
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Len counts live claims
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.expires)
}

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	for key, at := range s.expires {
		if !now.Before(at) {
			delete(s.expires, key)
		}
	}
}
