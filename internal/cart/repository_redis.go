package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps carts under cart:<userId> with a sliding TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (r *RedisRepository) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	b, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return b, nil
}

func (r *RedisRepository) Put(ctx context.Context, userID string, raw json.RawMessage) error {
	if err := r.client.Set(ctx, cartKey(userID), []byte(raw), r.ttl).Err(); err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
