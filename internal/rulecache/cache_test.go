package rulecache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Code  string `json:"code"`
	Cents int64  `json:"cents"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got payload
	hit, err := c.Get(ctx, "acme", "shipmethod:standard", &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "acme", "shipmethod:standard", payload{Code: "standard", Cents: 700}))

	hit, err = c.Get(ctx, "acme", "shipmethod:standard", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Code: "standard", Cents: 700}, got)
}

func TestCacheKeysAreTenantScoped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "acme", "feerules:active", []payload{{Code: "cod"}}))
	require.True(t, mr.Exists("acme:rules:feerules:active"))

	var got []payload
	hit, err := c.Get(ctx, "globex", "feerules:active", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "acme", "feerules:active", payload{Code: "cod"}))
	require.NoError(t, c.Invalidate(ctx, "acme", "feerules:active"))

	var got payload
	hit, err := c.Get(ctx, "acme", "feerules:active", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheNilSafety(t *testing.T) {
	ctx := context.Background()
	var c *Cache

	var got payload
	hit, err := c.Get(ctx, "acme", "k", &got)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Set(ctx, "acme", "k", payload{}))
	require.NoError(t, c.Invalidate(ctx, "acme", "k"))

	c = New(nil, time.Minute)
	hit, err = c.Get(ctx, "acme", "k", &got)
	require.NoError(t, err)
	require.False(t, hit)
}
