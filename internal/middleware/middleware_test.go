package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mentor-marketplace/internal/access"
	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/config"
	"github.com/iliyamo/mentor-marketplace/internal/utils"
)

const secret = "mw-secret"

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	tok, err := utils.NewAccessToken(secret, 7, "MENTOR", "m@example.com", 5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		roles  []string
		want   error
	}{
		{name: "no header", header: "", roles: []string{"MENTOR"}, want: apperr.ErrUnauthenticated},
		{name: "not bearer", header: "Basic abc", roles: []string{"MENTOR"}, want: apperr.ErrUnauthenticated},
		{name: "wrong secret", header: "Bearer " + mustToken(t, "other"), roles: []string{"MENTOR"}, want: apperr.ErrUnauthenticated},
		{name: "wrong role", header: "Bearer " + tok.Token, roles: []string{"MENTEE"}, want: apperr.ErrForbidden},
		{name: "allowed", header: "Bearer " + tok.Token, roles: []string{"MENTEE", "MENTOR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			h := JWTAuth(secret)(RequireRole(tt.roles...)(ok))
			err := h(c)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			id, err := access.FromContext(c)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), id.UserID)
			assert.Equal(t, "7", c.Get(access.ContextUserID))
			assert.Equal(t, "7", currentUserID(c))
		})
	}
}

func mustToken(t *testing.T, key string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(key, 1, "MENTEE", "x@example.com", 5)
	require.NoError(t, err)
	return tok.Token
}

func TestCurrentUserIDAnonymous(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", currentUserID(c))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimitTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl", Debug: true,
	}
	e := echo.New()
	e.POST("/login", ok, RateLimit(cfg, rdb, zerolog.Nop()))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		e.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "rl:ip:192.0.2.1", last.Header().Get("X-RateLimit-Key"))
	assert.Equal(t, "3600", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "too_many_requests")
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.GET("/", ok, RateLimit(cfg, rdb, zerolog.Nop()))
	mr.Close()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/booking", nil), httptest.NewRecorder())
	c.SetPath("/v1/booking")
	c.Set(access.ContextUserID, "9")
	for strategy, want := range map[string]string{
		"ip":         "rl:ip:192.0.2.1",
		"user":       "rl:user:9",
		"ip_route":   "rl:ip:192.0.2.1:route:POST /v1/booking",
		"user_route": "rl:user:9:route:POST /v1/booking",
		"":           "rl:ip:192.0.2.1:user:9:route:POST /v1/booking",
	} {
		assert.Equal(t, want, rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c), strategy)
	}
}

func TestResponseCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{http.MethodGet: true},
		TTL: time.Minute, KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 10,
	}
	calls := 0
	e := echo.New()
	g := e.Group("/v1/mentors", ResponseCache(cfg, rdb, zerolog.Nop()))
	g.GET("/:id", func(c echo.Context) error {
		calls++
		if c.Param("id") == "404" {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
		}
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := get("/v1/mentors/1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("/v1/mentors/1")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	assert.Contains(t, get("/v1/mentors/2").Body.String(), `"2"`, "path params vary the key")
	assert.Equal(t, 2, calls)

	get("/v1/mentors/404")
	assert.Equal(t, "MISS", get("/v1/mentors/404").Header().Get("X-Cache"), "non-200 responses are not stored")
	assert.Equal(t, 4, calls)

	n, err := rdb.Keys(context.Background(), "cache:*").Result()
	require.NoError(t, err)
	assert.Len(t, n, 2)
}

func TestCacheEntryRoundTripRejectsGarbage(t *testing.T) {
	bs, err := encodeEntry(http.StatusOK, http.Header{"X-A": {"b"}}, []byte("body"))
	require.NoError(t, err)
	status, hdr, body, ok := decodeEntry(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "b", hdr.Get("X-A"))
	assert.Equal(t, "body", string(body))

	_, _, _, ok = decodeEntry([]byte{1, 2})
	assert.False(t, ok)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/", ok,
		RateLimit(config.RateLimitConfig{Enabled: true}, nil, zerolog.Nop()),
		ResponseCache(config.CacheConfig{Enabled: false}, nil, zerolog.Nop()),
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
