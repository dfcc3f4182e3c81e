package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reqdoc/pkg/cache"
)

// runCacheContract exercises behaviour every backend shares.
func runCacheContract(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	_, err := c.Get(ctx, "absent")
	assert.ErrorIs(t, err, cache.ErrMiss)

	page := cache.Page{ContentType: "text/html; charset=utf-8", Body: []byte("<p>one</p>")}
	require.NoError(t, c.Set(ctx, "a", page))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, page, got)

	require.NoError(t, c.Set(ctx, "a", cache.Page{ContentType: "text/plain", Body: []byte("two")}))
	got, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got.Body))

	require.NoError(t, c.Set(ctx, "b", page))
	require.NoError(t, c.Purge(ctx))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "r3|document|docs/a.html", cache.Key(3, "document", "docs/a.html"))
	assert.NotEqual(t, cache.Key(1, "a", ""), cache.Key(1, "", "a"))
	assert.NotEqual(t, cache.Key(1, "a|b"), cache.Key(1, "a", "b"))
	assert.NotEqual(t, cache.Key(1, "toc"), cache.Key(2, "toc"))
}

func TestNop(t *testing.T) {
	c := cache.Nop{}
	require.NoError(t, c.Set(context.Background(), "k", cache.Page{Body: []byte("x")}))
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.NoError(t, c.Purge(context.Background()))
	assert.NoError(t, c.Close())
}

func TestMemoryContract(t *testing.T) {
	runCacheContract(t, cache.NewMemory())
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	body := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", cache.Page{Body: body}))
	body[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got.Body))
	got.Body[1] = 'Y'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again.Body))
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(cache.WithMemoryTTL(50 * time.Millisecond))

	require.NoError(t, c.Set(ctx, "k", cache.Page{Body: []byte("x")}))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "k")
		return errors.Is(err, cache.ErrMiss)
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(cache.WithMaxEntries(2))

	require.NoError(t, c.Set(ctx, "a", cache.Page{}))
	require.NoError(t, c.Set(ctx, "b", cache.Page{}))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", cache.Page{}))

	assert.Equal(t, 2, c.Len())
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := cache.NewMemory()
	assert.ErrorIs(t, c.Set(ctx, "k", cache.Page{}), context.Canceled)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func newRedis(t *testing.T, opts ...cache.RedisOption) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := cache.NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisContract(t *testing.T) {
	c, _ := newRedis(t)
	require.NoError(t, c.Ping(context.Background()))
	runCacheContract(t, c)
}

func TestRedisPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedis(t, cache.WithPrefix("test:"), cache.WithTTL(time.Minute))

	require.NoError(t, c.Set(ctx, "k", cache.Page{ContentType: "text/html", Body: []byte("x")}))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedisCorruptPage(t *testing.T) {
	c, mr := newRedis(t)
	require.NoError(t, mr.Set("reqdoc:page:k", "not json"))
	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestRedisConnectionError(t *testing.T) {
	c, mr := newRedis(t)
	mr.Close()
	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}
