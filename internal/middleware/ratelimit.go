package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/logger"
)

// takeToken refills the bucket continuously at ARGV[3] tokens per ms and
// takes one.  Returns {allowed, remaining, retry_after_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tk') or capacity)
local ts = tonumber(redis.call('HGET', KEYS[1], 'ts') or now)
tokens = math.min(capacity, tokens + math.max(0, now - ts) * rate)

local allowed, wait = 0, 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / rate)
end
redis.call('HSET', KEYS[1], 'tk', tostring(tokens), 'ts', now)
redis.call('EXPIRE', KEYS[1], ttl)
return { allowed, math.floor(tokens), wait }
`)

// NewTokenBucket limits each client IP per route.  Requests pass when
// Redis is unreachable.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	perMs := float64(cfg.RefillTokens) / float64(cfg.RefillInterval.Milliseconds())
	ttl := int64(cfg.TTL / time.Second)
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.Prefix + ":" + c.Path() + ":" + c.RealIP()
			res, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
				cfg.Capacity, time.Now().UnixMilli(), perMs, ttl).Int64Slice()
			if err != nil || len(res) != 3 {
				logger.FromEcho(c).Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}
			secs := int(math.Ceil(float64(res[2]) / 1000))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests", "retry_after": secs})
		}
	}
}
