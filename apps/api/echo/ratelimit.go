package echoapi

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/chaguo/core"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed window counter shared by every API instance.
// A nil *RedisLimiter allows everything.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	logger core.Logger
}

func NewRedisLimiter(client *redis.Client, logger core.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		logger: logger,
	}
}

// NewRedisClient connects to the redis server at conf.RateLimit.RedisURL. It returns nil if no URL is set.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	if conf.RateLimit.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(conf.RateLimit.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis URL")
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// Allow counts a hit on key and reports whether it is within limit for the current window.
// Redis failures let the request through.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		l.logger.Warn("rate limiter unavailable", err)
		return true
	}
	return allowed == 1
}

// rateLimitMiddleware limits the hits of every account on a route.
// It must run after the JWT middleware.
func rateLimitMiddleware(limiter *RedisLimiter, conf core.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(ctx echo.Context) error {
			accID, err := contextAccountID(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context account")
			}
			key := "ratelimit:" + ctx.Request().Method + ":" + ctx.Path() + ":" + accID
			if !limiter.Allow(ctx.Request().Context(), key, conf.Limit, conf.Window) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
