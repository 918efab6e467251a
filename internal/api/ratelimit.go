package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podium-events/podium/internal/config"
)

// Credential endpoints are brute-forceable, so they sit behind a small
// redis-backed token bucket keyed on client IP. The Lua script keeps refill
// and consume atomic across instances.
type RateLimiter struct {
	client    *redis.Client
	keyPrefix string
	capacity  float64
	window    time.Duration
}

func NewRateLimiter(conf *config.Config, capacity int, window time.Duration) *RateLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.REDIS_ADDR,
		Password: conf.REDIS_PASSWORD,
	})

	return &RateLimiter{
		client:    client,
		keyPrefix: "ratelimit:auth:",
		capacity:  float64(capacity),
		window:    window,
	}
}

const rateLimitScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refillRate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local windowSeconds = tonumber(ARGV[4])

	local bucketData = redis.call('HMGET', key, 'tokens', 'lastRefill')
	local tokens = tonumber(bucketData[1])
	local lastRefill = tonumber(bucketData[2])

	if tokens == nil then
		tokens = capacity
		lastRefill = now
	end
	if lastRefill == nil then
		lastRefill = now
	end

	local elapsed = (now - lastRefill) / 1000000000
	if elapsed > 0 then
		tokens = math.min(capacity, tokens + elapsed * refillRate)
	end

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'lastRefill', tostring(now))
	redis.call('EXPIRE', key, math.ceil(windowSeconds * 1.1))

	return allowed
`

// Allow consumes one token for the given client, returning false when the
// bucket is empty. Redis being down fails open, login must keep working
// through a cache outage.
func (r *RateLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	refillRate := r.capacity / r.window.Seconds()

	result, err := r.client.Eval(ctx, rateLimitScript,
		[]string{r.keyPrefix + clientKey},
		r.capacity,
		refillRate,
		time.Now().UnixNano(),
		r.window.Seconds(),
	).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit check failed: %w", err)
	}

	return result.(int64) == 1, nil
}

func (r *RateLimiter) Close() error {
	return r.client.Close()
}
