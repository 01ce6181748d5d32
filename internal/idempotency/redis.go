// Package idempotency hands out one-time claims on payment references.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 72 * time.Hour

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Claim reports true to the first caller for reference and false afterwards,
// until the claim expires or is released.
func (r *RedisStore) Claim(ctx context.Context, reference string) (bool, error) {
	ok, err := r.client.SetNX(ctx, claimKey(reference), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) Claimed(ctx context.Context, reference string) (bool, error) {
	n, err := r.client.Exists(ctx, claimKey(reference)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) Release(ctx context.Context, reference string) error {
	if err := r.client.Del(ctx, claimKey(reference)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func claimKey(reference string) string {
	return fmt.Sprintf("payment:claim:%s", reference)
}
