package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepository(client, ttl), mr
}

func TestRedisRepository_GetMissing(t *testing.T) {
	repo, _ := newRedisRepo(t, time.Hour)

	raw, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRedisRepository_PutGetWithTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 24*time.Hour)
	raw := json.RawMessage(`[{"productId":"p1","quantity":2}]`)

	require.NoError(t, repo.Put(ctx, "u1", raw))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))
	assert.True(t, mr.Exists("cart:u1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:u1"))

	mr.FastForward(25 * time.Hour)
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Hour)

	require.NoError(t, repo.Put(ctx, "u1", json.RawMessage(`{"p1":1}`)))
	require.NoError(t, repo.Put(ctx, "u2", json.RawMessage(`{"p2":1}`)))
	require.NoError(t, repo.Clear(ctx, "u1"))

	assert.False(t, mr.Exists("cart:u1"))
	assert.True(t, mr.Exists("cart:u2"))
	require.NoError(t, repo.Clear(ctx, "missing"))
}

func TestRedisRepository_ServerDown(t *testing.T) {
	repo, mr := newRedisRepo(t, time.Hour)
	mr.Close()

	_, err := repo.Get(context.Background(), "u1")
	assert.Error(t, err)
}
