package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisThrottle caps OTP issuance per email address within a rolling window.
// It is advisory: the provider enforces its own limits, this one just stops
// a single address being hammered through our endpoints.
type RedisThrottle struct {
	client redis.UniversalClient
	max    int
	window time.Duration
}

// NewRedisThrottle constructs a throttle allowing max requests per window.
func NewRedisThrottle(client redis.UniversalClient, max int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, max: max, window: window}
}

// Allow reports whether another code may be issued to the address. Store
// failures return an error; the caller decides the fail-open policy.
func (t *RedisThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t == nil || t.client == nil || t.max <= 0 {
		return true, nil
	}

	key := "otp:req:" + email
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr otp counter: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return false, fmt.Errorf("expire otp counter: %w", err)
		}
	}
	return count <= int64(t.max), nil
}
