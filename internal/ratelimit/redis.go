package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "ratelimit:"

// fixedWindowScript increments the counter and starts its expiry on the
// first hit of a window. It returns the count and the remaining TTL in ms.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter shares fixed windows between instances through Redis.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	period time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: defaultRedisPrefix,
		limit:  limit,
		period: period,
	}
}

// WithPrefix namespaces the keys written by this limiter.
func (l *RedisLimiter) WithPrefix(prefix string) *RedisLimiter {
	l.prefix = prefix
	return l
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	vals, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("redis rate limit: unexpected reply %v", vals)
	}

	count, ttl := int(vals[0]), time.Duration(vals[1])*time.Millisecond
	res := Result{Limit: l.limit}
	if count > l.limit {
		if ttl < 0 {
			ttl = l.period
		}
		res.RetryAfter = ttl
		return res, nil
	}

	res.Allowed = true
	res.Remaining = l.limit - count
	return res, nil
}
