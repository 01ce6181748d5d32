package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order := newTestOrder("ref-1")
	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.False(t, order.CreatedAt.IsZero())

	byID, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Reference, byID.Reference)

	byRef, err := repo.GetOrderByReference(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byRef.ID)

	// stored copy does not alias the caller's order
	order.Items[0].Quantity = 99
	again, _ := repo.GetOrderByID(ctx, order.ID)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestMemory_DuplicateReference(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("ref-1")))
	assert.ErrorIs(t, repo.CreateOrder(ctx, newTestOrder("ref-1")), ErrDuplicateOrder)
}

func TestMemory_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.GetOrderByID(context.Background(), "x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = repo.GetOrderByReference(context.Background(), "x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemory_StampsCreatedAtAndKeepsStatus(t *testing.T) {
	repo := NewMemoryRepository()
	stamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return stamp }
	ctx := context.Background()

	unmatched := domain.NewUnmatchedOrder("ref-9", 95000)
	require.NoError(t, repo.CreateOrder(ctx, unmatched))

	got, err := repo.GetOrderByReference(ctx, "ref-9")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusUnmatched, got.Status)
	assert.True(t, stamp.Equal(got.CreatedAt))
	assert.Empty(t, got.Items)
}

func TestOpen_MemoryAndUnknown(t *testing.T) {
	repo, err := Open(context.Background(), OpenOptions{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	_, err = Open(context.Background(), OpenOptions{Kind: "cassandra"})
	assert.ErrorIs(t, err, ErrUnknownStore)
}
