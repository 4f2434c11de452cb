package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStorage(client, "limiter:"), mr
}

func TestStorage_GetSetDelete(t *testing.T) {
	s, mr := newStorage(t)

	val, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("ip", []byte("1"), time.Minute))
	assert.True(t, mr.Exists("limiter:ip"))

	val, err = s.Get("ip")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	mr.FastForward(2 * time.Minute)
	val, err = s.Get("ip")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("ip", []byte("2"), 0))
	require.NoError(t, s.Delete("ip"))
	assert.False(t, mr.Exists("limiter:ip"))
}

func TestStorage_ResetOnlyTouchesPrefix(t *testing.T) {
	s, mr := newStorage(t)
	require.NoError(t, mr.Set("other", "keep"))
	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("1"), 0))

	require.NoError(t, s.Reset())
	assert.False(t, mr.Exists("limiter:a"))
	assert.True(t, mr.Exists("other"))
}

func TestStorage_BacksLimiter(t *testing.T) {
	s, _ := newStorage(t)

	app := fiber.New()
	app.Use(limiter.New(limiter.Config{Max: 2, Expiration: time.Minute, Storage: s}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, fiber.StatusTooManyRequests}, codes)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
