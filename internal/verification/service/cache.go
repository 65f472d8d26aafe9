package service

import (
	"context"
	"sync"
	"time"

	"ekyc-gateway/pkg/sentinel"
)

// TokenCache binds a provider SDK token to the user it was issued for. The
// binding lets Complete attribute a result to a user when no preview row was
// ever saved for the session.
type TokenCache interface {
	Bind(ctx context.Context, sdkToken, userID string, ttl time.Duration) error

	// Lookup returns the bound user id, or sentinel.ErrNotFound when the
	// token is unknown or the binding expired.
	Lookup(ctx context.Context, sdkToken string) (string, error)
}

// InMemoryTokenCache is the test double for the Redis-backed cache.
type InMemoryTokenCache struct {
	mu       sync.RWMutex
	bindings map[string]memoryBinding
}

type memoryBinding struct {
	userID    string
	expiresAt time.Time
}

func NewInMemoryTokenCache() *InMemoryTokenCache {
	return &InMemoryTokenCache{bindings: make(map[string]memoryBinding)}
}

func (c *InMemoryTokenCache) Bind(_ context.Context, sdkToken, userID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[sdkToken] = memoryBinding{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *InMemoryTokenCache) Lookup(_ context.Context, sdkToken string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.bindings[sdkToken]
	if !ok || time.Now().After(b.expiresAt) {
		return "", sentinel.ErrNotFound
	}
	return b.userID, nil
}
