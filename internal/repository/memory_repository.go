package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
)

// MemoryRepository keeps orders in process memory. It is used when no database
// is configured and in tests.
type MemoryRepository struct {
	mu          sync.RWMutex
	byID        map[string]*domain.Order
	byReference map[string]string
	now         func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:        make(map[string]*domain.Order),
		byReference: make(map[string]string),
		now:         time.Now,
	}
}

func (m *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byReference[order.Reference]; exists {
		return ErrDuplicateOrder
	}
	if _, exists := m.byID[order.ID]; exists {
		return ErrDuplicateOrder
	}

	order.CreatedAt = m.now().UTC()
	stored := *order
	stored.Items = domain.CopyItems(order.Items)
	m.byID[order.ID] = &stored
	m.byReference[order.Reference] = order.ID
	return nil
}

func (m *MemoryRepository) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.byID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *MemoryRepository) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	m.mu.RLock()
	id, ok := m.byReference[reference]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	return m.GetOrderByID(ctx, id)
}

func (m *MemoryRepository) Close() error {
	return nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	out := *order
	out.Items = domain.CopyItems(order.Items)
	return &out
}
