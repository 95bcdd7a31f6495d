package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pharmakart/cart-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore persists cart snapshots as JSON values in Redis.
// Snapshots carry no TTL: the cart is the system of record here, not a
// cache, and its lifecycle spans sessions until checkout or explicit clear.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (r *RedisSnapshotStore) Load(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	data, err := r.client.Get(ctx, snapshotKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot failed: %w", err)
	}
	return lines, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, cartID string, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey(cartID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisSnapshotStore) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, snapshotKey(cartID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
