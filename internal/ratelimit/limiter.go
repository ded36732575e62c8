package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/camp-booking-backend/internal/config"
)

// Result is the outcome of taking one token from a bucket.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Take(ctx context.Context, key string) (Result, error)
}

// tokenBucket refills refill tokens every interval up to capacity, all inside Redis
// so that every API replica shares the same buckets.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_ms = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + intervals * interval_ms
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('PEXPIRE', key, ttl_ms)

return { allowed, tokens, retry_after_ms }
`)

type RedisLimiter struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
	now func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, cfg config.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg, now: time.Now}
}

func (l *RedisLimiter) Take(ctx context.Context, key string) (Result, error) {
	vals, err := tokenBucket.Run(ctx, l.rdb, []string{key}, scriptArgs(l.cfg, l.now())...).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run token bucket failed: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("unexpected token bucket result: %v", vals)
	}

	return Result{
		Allowed:    asInt64(vals[0]) == 1,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

// scriptArgs returns ARGV for tokenBucket. The TTL is sent in milliseconds and
// is never shorter than one refill interval.
func scriptArgs(cfg config.RateLimitConfig, now time.Time) []any {
	ttl := cfg.TTL
	if ttl < cfg.RefillInterval {
		ttl = cfg.RefillInterval
	}
	ttlMs := ttl.Milliseconds()
	if ttlMs < 1 {
		ttlMs = 1
	}
	return []any{
		now.UnixMilli(),
		cfg.Capacity,
		cfg.RefillInterval.Milliseconds(),
		ttlMs,
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}
