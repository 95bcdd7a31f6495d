package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pharmakart/cart-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*RedisSnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSnapshotStore(client), mr
}

func TestRedisSnapshotStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	snapshots, _ := setupTestRedis(t)

	lines := []domain.CartLine{
		{ProductID: "A", Name: "Bandages", UnitPrice: 8.5, ListPrice: 10, Quantity: 2, StockHint: 40},
		{ProductID: "B", Name: "Thermometer", UnitPrice: 25, ListPrice: 25, Quantity: 1},
	}

	require.NoError(t, snapshots.Save(ctx, "cart-1", lines))

	loaded, err := snapshots.Load(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, lines, loaded)
}

func TestRedisSnapshotStore_Missing(t *testing.T) {
	snapshots, _ := setupTestRedis(t)

	_, err := snapshots.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisSnapshotStore_InvalidJSON(t *testing.T) {
	snapshots, mr := setupTestRedis(t)
	mr.Set(snapshotKey("cart-1"), "{not json")

	_, err := snapshots.Load(context.Background(), "cart-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func TestRedisSnapshotStore_Delete(t *testing.T) {
	ctx := context.Background()
	snapshots, _ := setupTestRedis(t)

	require.NoError(t, snapshots.Save(ctx, "cart-1", []domain.CartLine{{ProductID: "A", UnitPrice: 1, Quantity: 1}}))
	require.NoError(t, snapshots.Delete(ctx, "cart-1"))

	_, err := snapshots.Load(ctx, "cart-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestCartStore_OverRedis_CorruptRecovery(t *testing.T) {
	ctx := context.Background()
	snapshots, mr := setupTestRedis(t)
	mr.Set(snapshotKey("cart-1"), "garbage")

	cs := NewCartStore(ctx, snapshots, "cart-1", zap.NewNop())
	assert.Equal(t, 0, cs.ItemCount())

	require.NoError(t, cs.AddItem(ctx, testProduct("A", 10, 5), 2))

	raw, err := mr.Get(snapshotKey("cart-1"))
	require.NoError(t, err)
	var persisted []domain.CartLine
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Len(t, persisted, 1)
	assert.Equal(t, 2, persisted[0].Quantity)
}
