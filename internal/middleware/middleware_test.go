package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/config"
	"github.com/iliyamo/apparel-studio/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get(CtxUserID), "role": c.Get(CtxRole)})
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthSources(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 7, "customer", 15)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tok.Token})
		rec := serve(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":7,"role":"customer"}`, rec.Body.String())
	})
	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusOK, serve(e, req).Code)
	})
	t.Run("missing", func(t *testing.T) {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"missing access token"}`, rec.Body.String())
	})
	t.Run("bad signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token+"x")
		assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
	})
}

func TestOptionalJWTAllowsAnonymous(t *testing.T) {
	e := echo.New()
	e.GET("/", whoami, OptionalJWT(secret))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":null,"role":null}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	admin, err := utils.NewAccessToken(secret, 1, "admin", 15)
	require.NoError(t, err)
	customer, err := utils.NewAccessToken(secret, 2, "customer", 15)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(secret), RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+customer.Token)
	rec := serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin.Token)
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestCacheEntryDecode(t *testing.T) {
	bs, err := encodeEntry(cachedResponse{Status: http.StatusOK, ContentType: "application/json", Body: []byte(`{"ok":true}`)})
	require.NoError(t, err)

	got, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, `{"ok":true}`, string(got.Body))

	_, ok = decodeEntry([]byte("garbage"))
	assert.False(t, ok)
	_, ok = decodeEntry([]byte(`{}`))
	assert.False(t, ok)
}

func TestBodyTeeStopsBufferingPastLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	tee := &bodyTee{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = tee.Write([]byte("abc"))
	assert.False(t, tee.overflow)
	_, _ = tee.Write([]byte("de"))
	assert.True(t, tee.overflow)
	assert.Equal(t, "abcde", rec.Body.String())
	assert.Zero(t, tee.buf.Len())
}

func TestCacheKeysAreGrouped(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "p"}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/catalog-products?category=caps", nil), httptest.NewRecorder())
	c.SetPath("/api/catalog-products")

	key := cacheKeyFrom(cfg, "catalog", c)
	assert.Contains(t, key, "p:catalog:")
	assert.NotEqual(t, groupIndex(cfg, "catalog"), key)

	other := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/catalog-products?category=tees", nil), httptest.NewRecorder())
	other.SetPath("/api/catalog-products")
	assert.NotEqual(t, key, cacheKeyFrom(cfg, "catalog", other))
}

// unreachable returns a client whose every command fails fast.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisFailuresFailOpen(t *testing.T) {
	rdb := unreachable()
	defer rdb.Close()

	e := echo.New()
	cacheCfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "t"}
	rlCfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e.GET("/items", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") },
		NewTokenBucket(rlCfg, rdb), NewRedisCache(cacheCfg, rdb, "items"))

	for i := 0; i < 3; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fresh", rec.Body.String())
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Error(t, InvalidateGroup(t.Context(), cacheCfg, rdb, "items"))
}

func TestDisabledMiddlewarePassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewRedisCache(config.CacheConfig{}, nil, "x"), NewTokenBucket(config.RateLimitConfig{}, nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, InvalidateGroup(t.Context(), config.CacheConfig{}, nil, "x"))
}
