package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultEventTTL outlives Stripe's three-day retry window.
const DefaultEventTTL = 72 * time.Hour

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    DefaultEventTTL,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisCache) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, cacheKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func (r RedisCache) Mark(ctx context.Context, eventID string) error {
	if err := r.client.Set(ctx, cacheKey(eventID), time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(eventID string) string {
	return fmt.Sprintf("webhook:event:%s", eventID)
}
