package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-process fallback used when no redis is configured.
type MemoryStore struct {
	mu     sync.Mutex
	claims map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		claims: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *MemoryStore) Claim(_ context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.claims[reference]; ok && now.Before(expires) {
		return false, nil
	}
	m.claims[reference] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, reference)
	return nil
}
