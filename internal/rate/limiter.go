package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds throttle tuning parameters.
type Config struct {
	EnableRotationThrottle   bool
	MaxRotationAttempts      int
	RotationCooldownDuration time.Duration
}

// Limiter enforces a per-family budget on rotation attempts using Redis
// counters. It exists to slow an attacker racing the legitimate client
// through a leaked refresh token; it never touches the family itself.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckRotation counts one rotation attempt for the family and rejects
// it once the window budget is spent.
func (l *Limiter) CheckRotation(ctx context.Context, familyID string) error {
	if !l.config.EnableRotationThrottle {
		return nil
	}

	count, err := l.incrementWithTTL(ctx, rotationKey(familyID), l.config.RotationCooldownDuration)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxRotationAttempts) {
		return ErrRateLimited
	}

	return nil
}

// RotationAttempts returns the current window counter for a family.
// Missing keys return zero.
func (l *Limiter) RotationAttempts(ctx context.Context, familyID string) (int, error) {
	count, err := l.redis.Get(ctx, rotationKey(familyID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func rotationKey(familyID string) string {
	return "fr:" + familyID
}
