package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boardcut/internal/model"
)

func newTestRedisStore(t *testing.T, indexLimit int) (*RedisStore, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	clock := newFakeClock()
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), indexLimit)
	s.now = clock.Now
	t.Cleanup(func() { _ = s.Close() })
	return s, mr, clock
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s, mr, _ := newTestRedisStore(t, 100)

	e := Entry{Hash: "abc", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), TTL: 72 * time.Hour, Result: sampleResult("redis")}
	require.NoError(t, s.Put(ctx, e))

	assert.True(t, mr.Exists("opt:abc"))
	assert.Equal(t, 72*time.Hour, mr.TTL("opt:abc"))
	members, err := mr.ZMembers("opt:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, members)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, e.Result, got.Result)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Get(ctx, "nope")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRedisStore_PutRequiresTTL(t *testing.T) {
	s, _, _ := newTestRedisStore(t, 100)
	err := s.Put(context.Background(), Entry{Hash: "x", Result: sampleResult("x")})
	assert.Error(t, err)
}

func TestRedisStore_ExpiryAndIndexPruning(t *testing.T) {
	ctx := context.Background()
	s, mr, clock := newTestRedisStore(t, 100)

	require.NoError(t, s.Put(ctx, Entry{Hash: "old", TTL: time.Minute, Result: sampleResult("old")}))
	clock.Advance(time.Second)
	require.NoError(t, s.Put(ctx, Entry{Hash: "new", TTL: time.Hour, Result: sampleResult("new")}))

	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "old")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	recent, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new", recent[0].Hash)
	assert.True(t, clock.Now().Equal(recent[0].CreatedAt))

	members, err := mr.ZMembers("opt:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, members, "expired member pruned from the index")
}

func TestRedisStore_ListRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s, mr, clock := newTestRedisStore(t, 3)

	for _, h := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Put(ctx, Entry{Hash: h, TTL: time.Hour, Result: sampleResult(h)}))
		clock.Advance(time.Millisecond)
	}

	members, err := mr.ZMembers("opt:index")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, members, "index trimmed to the newest entries")

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Hash)
	assert.Equal(t, "c", recent[1].Hash)
}

func TestRedisStore_ListRecentSkipsExpiredAcrossPages(t *testing.T) {
	ctx := context.Background()
	s, mr, clock := newTestRedisStore(t, 0)

	require.NoError(t, s.Put(ctx, Entry{Hash: "keep1", TTL: time.Hour, Result: sampleResult("k1")}))
	clock.Advance(time.Millisecond)
	require.NoError(t, s.Put(ctx, Entry{Hash: "keep2", TTL: time.Hour, Result: sampleResult("k2")}))
	clock.Advance(time.Millisecond)
	for _, h := range []string{"gone1", "gone2"} {
		require.NoError(t, s.Put(ctx, Entry{Hash: h, TTL: time.Second, Result: sampleResult(h)}))
		clock.Advance(time.Millisecond)
	}
	mr.FastForward(2 * time.Second)

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "keep2", recent[0].Hash)
	assert.Equal(t, "keep1", recent[1].Hash)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, mr, _ := newTestRedisStore(t, 10)
	mr.Close()

	err := s.Put(ctx, Entry{Hash: "h", TTL: time.Hour, Result: sampleResult("h")})
	assert.True(t, errors.Is(err, model.ErrCacheUnavailable), "got %v", err)

	_, err = s.Get(ctx, "h")
	assert.True(t, errors.Is(err, model.ErrCacheUnavailable), "got %v", err)

	_, err = s.ListRecent(ctx, 5)
	assert.True(t, errors.Is(err, model.ErrCacheUnavailable), "got %v", err)

	assert.True(t, errors.Is(s.Ping(ctx), model.ErrCacheUnavailable))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{URL: "http://localhost:6379"})
	assert.Error(t, err)

	s, err := NewRedisStore(RedisOptions{URL: "redis://localhost:6379/2", IndexLimit: 10})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
