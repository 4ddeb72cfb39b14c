package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		nilRedis  bool
		hits      int
		limit     int
		wantAllow bool
		wantErr   bool
	}{
		{name: "test environment bypass", env: "test", hits: 5, limit: 1, wantAllow: true},
		{name: "development environment bypass", env: "development", hits: 5, limit: 1, wantAllow: true},
		{name: "nil redis errors in production", env: "production", nilRedis: true, hits: 1, limit: 1, wantErr: true},
		{name: "within limit", env: "production", hits: 2, limit: 2, wantAllow: true},
		{name: "over limit", env: "production", hits: 3, limit: 2, wantAllow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rdb *redis.Client
			if !tt.nilRedis {
				_, rdb = newMiniredisClient(t)
			}
			l := NewRateLimiter(rdb, tt.env)

			var allowed bool
			var err error
			for i := 0; i < tt.hits; i++ {
				allowed, err = l.Allow(context.Background(), "login", "ip:1.2.3.4", tt.limit, time.Minute)
			}

			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, allowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, allowed)
		})
	}
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	l := NewRateLimiter(rdb, "production")
	ctx := context.Background()

	allowed, err := l.Allow(ctx, "register", "ip:1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(ctx, "register", "ip:1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, err = l.Allow(ctx, "register", "ip:1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Middleware(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	l := NewRateLimiter(rdb, "production")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err, false)
		},
	})
	app.Post("/login", l.Limit(1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimiter_FailPolicies(t *testing.T) {
	tests := []struct {
		name       string
		policy     FailPolicy
		wantStatus int
	}{
		{"fail open", FailOpen, http.StatusOK},
		{"fail closed", FailClosed, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRateLimiter(nil, "production")
			app := fiber.New(fiber.Config{
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					return models.RespondWithError(c, err, false)
				},
			})
			app.Get("/", l.LimitWithPolicy(1, time.Minute, tt.policy, "x"), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
