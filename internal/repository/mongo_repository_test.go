package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongo(t *testing.T) (*MongoRepository, func()) {
	if testing.Short() {
		t.Skip("skipping mongodb integration test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	cleanup := func() {
		repo.Close()
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestMongo_CreateOrder_Success(t *testing.T) {
	repo, cleanup := setupMongo(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder(uuid.NewString())

	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.False(t, order.CreatedAt.IsZero(), "server assigns created_at")

	fetched, err := repo.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Reference, fetched.Reference)
	assert.True(t, decimal.RequireFromString("1850.75").Equal(fetched.TotalPaid))
	assert.Equal(t, int64(185075), fetched.AmountCharged)
	assert.Equal(t, domain.OrderStatusPaid, fetched.Status)
	require.Len(t, fetched.Items, 2)
	assert.True(t, decimal.NewFromInt(850).Equal(fetched.Items[0].UnitPrice))
	assert.Equal(t, "Birch", fetched.Items[1].Material)
}

func TestMongo_CreateOrder_DuplicateReference(t *testing.T) {
	repo, cleanup := setupMongo(t)
	defer cleanup()

	ctx := context.Background()
	reference := uuid.NewString()
	first := newTestOrder(reference)
	require.NoError(t, repo.CreateOrder(ctx, first))

	err := repo.CreateOrder(ctx, newTestOrder(reference))
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	// the stored order is untouched
	fetched, err := repo.GetOrderByReference(ctx, reference)
	require.NoError(t, err)
	assert.Equal(t, first.ID, fetched.ID)
}

func TestMongo_GetOrder_NotFound(t *testing.T) {
	repo, cleanup := setupMongo(t)
	defer cleanup()

	_, err := repo.GetOrderByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
