package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/logger"
)

// cachedResponse is what a cache entry holds.  Listings are JSON, so the
// content type is the only header worth replaying.
type cachedResponse struct {
	Status      int    `json:"s"`
	ContentType string `json:"ct"`
	Body        []byte `json:"b"`
}

func encodeEntry(r cachedResponse) ([]byte, error) { return json.Marshal(r) }

func decodeEntry(bs []byte) (cachedResponse, bool) {
	var r cachedResponse
	if err := json.Unmarshal(bs, &r); err != nil || r.Status == 0 {
		return cachedResponse{}, false
	}
	return r, true
}

// bodyTee forwards writes to the client and keeps a copy while it stays
// under limit.
type bodyTee struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *bodyTee) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyTee) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// groupIndex is the Redis set listing every live key of a group.
func groupIndex(cfg config.CacheConfig, group string) string {
	return cfg.Prefix + ":" + group + ":keys"
}

// cacheKeyFrom hashes the request path and query into a key under the
// group's namespace.  The route template is part of the hash so that
// /slug/x and /:id=x never collide.
func cacheKeyFrom(cfg config.CacheConfig, group string, c echo.Context) string {
	r := c.Request()
	h := sha256.New()
	for _, part := range []string{c.Path(), r.URL.Path, r.URL.Query().Encode()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cfg.Prefix + ":" + group + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache serves repeated reads of the wrapped routes from Redis.
// Only 200 responses are stored.  Any Redis error is treated as a miss.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, group string) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, group, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if hit, ok := decodeEntry(bs); ok {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
			}

			tee := &bodyTee{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = tee
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if tee.status != http.StatusOK || tee.overflow {
				return nil
			}

			payload, err := encodeEntry(cachedResponse{
				Status:      tee.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        tee.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			store := context.WithoutCancel(ctx)
			index := groupIndex(cfg, group)
			_, err = rdb.TxPipelined(store, func(p redis.Pipeliner) error {
				p.Set(store, key, payload, ttl)
				p.SAdd(store, index, key)
				p.Expire(store, index, 2*ttl)
				return nil
			})
			if err != nil {
				logger.FromEcho(c).Warn("cache store failed", zap.String("group", group), zap.Error(err))
			}
			return nil
		}
	}
}

// InvalidateGroup drops every cached response of group.  Writes to a
// product family call it after they commit.
func InvalidateGroup(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client, group string) error {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	index := groupIndex(cfg, group)
	keys, err := rdb.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	return rdb.Del(ctx, append(keys, index)...).Err()
}
