package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/logger"
)

// tokenBucketScript takes one token from the bucket at KEYS[1] after
// crediting whole elapsed refill intervals.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed (0|1), tokens left, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local now, cap, add, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens, ts = tonumber(b[1]) or cap, tonumber(b[2]) or now

local n = math.floor(math.max(0, now - ts) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * add)
  ts = ts + n * every
end

local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - ts))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// NewTokenBucket limits requests with a Redis token bucket per key (see
// buildRateKey).  Redis failures let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			args := []any{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			ctx := c.Request().Context()
			res, err := tokenBucketScript.Run(ctx, rdb, []string{key}, args...).Int64Slice()
			if err != nil {
				logger.WarnCtx(ctx, "ratelimit: redis error", zap.String("key", key), zap.Error(err))
				return next(c)
			}
			if len(res) != 3 {
				logger.WarnCtx(ctx, "ratelimit: unexpected script result", zap.String("key", key), zap.Int64s("result", res))
				return next(c)
			}
			allowed, remaining, retryMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if allowed {
				return next(c)
			}

			secs := int(math.Ceil((time.Duration(retryMs) * time.Millisecond).Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			logger.DebugCtx(ctx, "ratelimit: blocked", zap.String("key", key), zap.Int("retry_after_s", secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":      "too many requests, try again later",
				"retryAfter": secs,
			})
		}
	}
}

// buildRateKey joins the key dimensions named by cfg.KeyStrategy, e.g.
// "ip_route" or "user_route".  Unknown strategies key on every dimension.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	dims := map[string]string{
		"ip":    ip,
		"user":  Subject(c),
		"route": c.Request().Method + " " + c.Path(),
	}

	parts := []string{cfg.Prefix}
	for _, name := range strings.Split(strings.ToLower(cfg.KeyStrategy), "_") {
		if v, ok := dims[name]; ok {
			parts = append(parts, name, v)
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "ip", ip, "user", dims["user"], "route", dims["route"])
	}
	return strings.Join(parts, ":")
}
