package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/logger"
)

// Cache groups.  A write to one group drops every cached response of it.
const (
	GroupSpaces = "spaces"
	GroupMedia  = "media"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// groupPattern matches every key of a group.
func groupPattern(prefix, group string) string {
	return fmt.Sprintf("%s:%s:*", prefix, group)
}

// cacheKeyFrom builds <prefix>:<group>:<sha1 of the strategy parts>.
func cacheKeyFrom(cfg config.CacheConfig, group string, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
	default: // "route_query"
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	// Path params are part of the identity of /api/spaces/:id.
	for _, name := range c.ParamNames() {
		parts = append(parts, "p", name, c.Param(name))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%s:%x", cfg.Prefix, group, sum[:])
}

// cachedResponse is the Redis value of a cache entry.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

func (r *cachedResponse) replay(c echo.Context) error {
	h := c.Response().Header()
	for k, vals := range r.Header {
		if k == echo.HeaderContentLength || k == echo.HeaderXRequestID || k == "X-Cache" {
			continue
		}
		h[k] = append([]string(nil), vals...)
	}
	h.Set("X-Cache", "HIT")
	return c.Blob(r.Status, h.Get(echo.HeaderContentType), r.Body)
}

// NewRedisCache caches successful responses of the group in Redis,
// headers included, so a hit is byte-identical to the original.  It is a
// pass-through when caching is disabled or rdb is nil.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, group string) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, group, c)

			bs, err := rdb.Get(ctx, key).Bytes()
			switch {
			case err == nil:
				var hit cachedResponse
				if jerr := json.Unmarshal(bs, &hit); jerr == nil {
					return hit.replay(c)
				}
			case !errors.Is(err, redis.Nil):
				logger.WarnCtx(ctx, "cache read failed", zap.String("key", key), zap.Error(err))
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			// Truncated bodies are not cached.
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				Status: cw.status,
				Header: c.Response().Header().Clone(),
				Body:   cw.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				logger.WarnCtx(ctx, "cache write failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

// InvalidateOnSuccess drops the cached responses of the given groups once
// the wrapped write handler has answered with a 2xx status.
func InvalidateOnSuccess(cfg config.CacheConfig, rdb *redis.Client, groups ...string) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil || status < 200 || status >= 300 {
				return err
			}
			ctx := context.WithoutCancel(c.Request().Context())
			for _, g := range groups {
				if derr := InvalidateGroup(ctx, rdb, cfg.Prefix, g); derr != nil {
					logger.WarnCtx(ctx, "cache invalidation failed", zap.String("group", g), zap.Error(derr))
				}
			}
			return nil
		}
	}
}

// InvalidateGroup deletes every cached response of group.
func InvalidateGroup(ctx context.Context, rdb *redis.Client, prefix, group string) error {
	iter := rdb.Scan(ctx, 0, groupPattern(prefix, group), 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 200 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return rdb.Del(ctx, keys...).Err()
	}
	return nil
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
