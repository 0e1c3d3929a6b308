package middleware

import (
	"net/http"
	"testing"
	"time"

	redisStore "gameserver-market/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter(t *testing.T, rule RateLimitRule) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redisStore.NewRateLimitStore(client)

	r := gin.New()
	r.GET("/x", RateLimiter(store, "test", rule, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		w := performRequest(r, http.MethodGet, "/x", map[string]string{HeaderUserID: "7"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_OverLimit(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 2, Window: time.Minute})

	headers := map[string]string{HeaderUserID: "7"}
	performRequest(r, http.MethodGet, "/x", headers)
	performRequest(r, http.MethodGet, "/x", headers)
	w := performRequest(r, http.MethodGet, "/x", headers)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_IndependentIdentities(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 1, Window: time.Minute})

	w1 := performRequest(r, http.MethodGet, "/x", map[string]string{HeaderUserID: "7"})
	w2 := performRequest(r, http.MethodGet, "/x", map[string]string{HeaderUserID: "8"})

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestRateLimiter_StoreDownAllowsRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redisStore.NewRateLimitStore(client)
	mr.Close()

	r := gin.New()
	r.GET("/x", RateLimiter(store, "test", RateLimitRule{Limit: 1, Window: time.Minute}, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultRateLimitRules_CoverRouteGroups(t *testing.T) {
	rules := DefaultRateLimitRules()
	for _, group := range []string{"checkout", "deposit", "player_read", "admin_login", "admin"} {
		rule, ok := rules[group]
		assert.True(t, ok, "missing rule for %s", group)
		assert.Positive(t, rule.Limit)
		assert.Positive(t, rule.Window)
	}
}
