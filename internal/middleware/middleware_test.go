package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/utils"
)

func newProtected(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	g := e.Group("/api", JWTAuth("secret"), RequireRole("ADMIN"))
	g.GET("/adoptions", func(c echo.Context) error {
		return c.String(http.StatusOK, Subject(c))
	})
	return e
}

func TestJWTAuthAndRole(t *testing.T) {
	admin, err := utils.NewAccessToken("secret", "root", "ADMIN", 5)
	require.NoError(t, err)
	viewer, err := utils.NewAccessToken("secret", "guest", "VIEWER", 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other", "root", "ADMIN", 5)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken("secret", "root", "ADMIN", -5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + forged.Token, http.StatusUnauthorized},
		{"expired", "Bearer " + expired.Token, http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer.Token, http.StatusForbidden},
		{"admin", "Bearer " + admin.Token, http.StatusOK},
	}

	e := newProtected(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/adoptions", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "root", rec.Body.String())
			}
		})
	}
}

func TestDisabledRedisMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}
	cacheCfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, Prefix: "t"}
	e.GET("/api/spaces", h, NewRedisCache(cacheCfg, nil, GroupSpaces))
	e.POST("/api/spaces/:id/adopt", h,
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
		InvalidateOnSuccess(cacheCfg, nil, GroupSpaces))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/spaces", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/spaces/1/adopt", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 6, calls)
}

func TestCacheKeyIncludesGroupAndParams(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "adopt:cache", KeyStrategy: "route_query"}
	key := func(path, group string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		c.SetPath("/api/spaces/:id")
		c.SetParamNames("id")
		c.SetParamValues(path[len("/api/spaces/"):])
		return cacheKeyFrom(cfg, group, c)
	}

	k1 := key("/api/spaces/1", GroupSpaces)
	k2 := key("/api/spaces/2", GroupSpaces)
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, key("/api/spaces/1", GroupSpaces))
	assert.Regexp(t, `^adopt:cache:spaces:[0-9a-f]{40}$`, k1)
	assert.Equal(t, "adopt:cache:spaces:*", groupPattern(cfg.Prefix, GroupSpaces))
}

func TestCachedResponseReplay(t *testing.T) {
	hit := cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{
			"Content-Type":   {"application/json"},
			"Content-Length": {"7"},
			"X-Cache":        {"MISS"},
			"Vary":           {"Origin"},
			"X-Request-Id":   {"req-from-first-call"},
		},
		Body: []byte(`{"a":1}`),
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/media", nil), rec)
	require.NoError(t, hit.replay(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Empty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestRecover(t *testing.T) {
	e := echo.New()
	e.Use(Recover())
	e.GET("/boom", func(echo.Context) error { panic("boom") })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/spaces/3/adopt", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/spaces/:id/adopt")

	cfg := config.RateLimitConfig{Prefix: "adopt:rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "adopt:rl:ip:10.0.0.1:route:POST /api/spaces/:id/adopt", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_user"
	assert.Equal(t, "adopt:rl:ip:10.0.0.1:user:anon", buildRateKey(cfg, c))
}
