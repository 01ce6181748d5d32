// Package cart holds the per-session shopping cart and its drawer state.
package cart

import (
	"sync"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/pricing"
	"github.com/shopspring/decimal"
)

// Listener receives a fresh snapshot after every mutation, in mutation order.
// A listener may read the store but must not mutate it.
type Listener func(domain.CartSnapshot)

// Store is a single shopper's cart. It is safe for concurrent use.
type Store struct {
	// notifyMu serialises mutate so snapshots reach listeners in the order
	// the changes were made. It is always taken before mu.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	items     []domain.CartLineItem
	isOpen    bool
	listeners map[uint64]Listener
	nextID    uint64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		listeners: make(map[uint64]Listener),
		now:       time.Now,
	}
}

// AddItem merges the candidate into an existing (id, material) line, bumping its
// quantity, or appends it with quantity 1. An existing line keeps its original
// name and price.
func (s *Store) AddItem(candidate domain.CartCandidate) {
	s.mutate(func() bool {
		key := candidate.Key()
		for i := range s.items {
			if s.items[i].Key() == key {
				s.items[i].Quantity++
				return true
			}
		}
		s.items = append(s.items, domain.CartLineItem{
			ID:        candidate.ID,
			Name:      candidate.Name,
			Material:  candidate.Material,
			Color:     candidate.Color,
			UnitPrice: candidate.UnitPrice,
			Quantity:  1,
		})
		return true
	})
}

// RemoveItem drops the line identified by key. It reports whether a line was removed.
func (s *Store) RemoveItem(key domain.LineKey) bool {
	return s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].Key() == key {
				s.items = append(s.items[:i:i], s.items[i+1:]...)
				return true
			}
		}
		return false
	})
}

// RemoveAt drops the line at index. Out of range is a no-op.
func (s *Store) RemoveAt(index int) bool {
	return s.mutate(func() bool {
		if index < 0 || index >= len(s.items) {
			return false
		}
		s.items = append(s.items[:index:index], s.items[index+1:]...)
		return true
	})
}

// Clear empties the cart. Drawer visibility is left alone.
func (s *Store) Clear() {
	s.mutate(func() bool {
		s.items = nil
		return true
	})
}

func (s *Store) ToggleOpen() {
	s.mutate(func() bool {
		s.isOpen = !s.isOpen
		return true
	})
}

func (s *Store) Open() {
	s.setOpen(true)
}

func (s *Store) Close() {
	s.setOpen(false)
}

func (s *Store) setOpen(open bool) {
	s.mutate(func() bool {
		if s.isOpen == open {
			return false
		}
		s.isOpen = open
		return true
	})
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CopyItems(s.items)
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Total(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Count(s.items)
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() domain.CartSnapshot {
	return domain.CartSnapshot{
		Items:      domain.CopyItems(s.items),
		Total:      pricing.Total(s.items),
		Count:      pricing.Count(s.items),
		IsOpen:     s.isOpen,
		Currency:   domain.CurrencyGHS,
		CapturedAt: s.now(),
	}
}

// mutate runs change under the lock and, if it changed anything, notifies
// listeners outside the lock so they may read the store. Mutations are
// serialised with their notifications.
func (s *Store) mutate(change func() bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !change() {
		s.mu.Unlock()
		return false
	}
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return true
}
