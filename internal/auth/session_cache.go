package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:"

// SessionCache tracks live sessions keyed by token id. A token whose session
// entry is gone is rejected even if its signature still verifies, which is
// how logout and account deactivation take effect immediately.
type SessionCache struct {
	Client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{Client: client}
}

func (c *SessionCache) Put(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return c.Client.Set(ctx, sessionKeyPrefix+jti, userID, ttl).Err()
}

func (c *SessionCache) Exists(ctx context.Context, jti string) (bool, error) {
	_, err := c.Client.Get(ctx, sessionKeyPrefix+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *SessionCache) Delete(ctx context.Context, jti string) error {
	return c.Client.Del(ctx, sessionKeyPrefix+jti).Err()
}
