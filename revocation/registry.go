// Package revocation tracks explicitly revoked token identifiers.
//
// The registry is deliberately decoupled from the family ledger: an
// access token can be burned without any family context, and every
// entry expires at the refresh-token lifetime horizon, so the set can
// never grow without bound.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps backing-store connectivity failures so
// callers can keep them apart from protocol rejections.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Registry is a Redis-backed jti denylist with TTL-bounded entries.
type Registry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRegistry creates a [Registry] under the given key prefix.
func NewRegistry(redisClient redis.UniversalClient, prefix string) *Registry {
	if prefix == "" {
		prefix = "revoked"
	}
	return &Registry{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (r *Registry) key(jti string) string {
	return r.prefix + ":" + jti
}

// Revoke records jti as never to be honored again. Idempotent; a repeat
// call refreshes the TTL, which only ever extends the entry to the
// horizon a fresh token would have anyway.
func (r *Registry) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := r.redis.Set(ctx, r.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti is present in the denylist. Presence
// wins over signature validity and expiry.
func (r *Registry) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := r.redis.Exists(ctx, r.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}
