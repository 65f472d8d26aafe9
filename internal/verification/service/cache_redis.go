package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ekyc-gateway/internal/platform/redis"
	"ekyc-gateway/pkg/sentinel"
)

const tokenKeyPrefix = "ekyc:token:"

// RedisTokenCache binds tokens in Redis so the binding survives process
// restarts within the provider token's validity window.
type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func (c *RedisTokenCache) Bind(ctx context.Context, sdkToken, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, tokenKeyPrefix+sdkToken, userID, ttl).Err(); err != nil {
		return fmt.Errorf("bind sdk token: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) Lookup(ctx context.Context, sdkToken string) (string, error) {
	userID, err := c.client.Get(ctx, tokenKeyPrefix+sdkToken).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("lookup sdk token: %w", err)
	}
	return userID, nil
}
