package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:access:"

// package-level Redis client used for the access-token revocation list (optional)
var client *redis.Client

// SetClient configures the Redis client used for revocation checks.
// Safe to call with nil to disable revocation.
func SetClient(c *redis.Client) {
	client = c
}

// Enabled reports whether a Redis client is configured.
func Enabled() bool { return client != nil }

// Revoke stores the token in the revocation list until ttl elapses.
// If no Redis client is configured, this is a no-op and returns nil.
func Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return client.Set(ctx, keyPrefix+token, "1", ttl).Err()
}

// IsRevoked returns true when the token exists in the revocation list.
// If no Redis client is configured, returns (false, nil).
func IsRevoked(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}
	exists, err := client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
