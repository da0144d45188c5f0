package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to REDIS_ADDR (default localhost:6379) and skips
// the test when no server answers.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testSession(t *testing.T, rdb *redis.Client) string {
	t.Helper()
	session := "test-" + t.Name() + "-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { rdb.Del(context.Background(), submissionKeyPrefix+session) })
	return session
}

func TestRedisTrackerTokens(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	tr := NewRedisTracker(rdb, time.Minute)
	session := testSession(t, rdb)

	a, err := tr.Next(ctx, session)
	require.NoError(t, err)
	b, err := tr.Next(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, a+1, b)

	ok, err := tr.IsLatest(ctx, session, a)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = tr.IsLatest(ctx, session, b)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisTrackerUnknownSessionIsLatest(t *testing.T) {
	rdb := newTestRedis(t)
	tr := NewRedisTracker(rdb, time.Minute)

	ok, err := tr.IsLatest(context.Background(), testSession(t, rdb), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisTrackerRefreshesTTL(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	tr := NewRedisTracker(rdb, time.Minute)
	session := testSession(t, rdb)
	key := submissionKeyPrefix + session

	_, err := tr.Next(ctx, session)
	require.NoError(t, err)
	require.NoError(t, rdb.Expire(ctx, key, 5*time.Second).Err())

	_, err = tr.Next(ctx, session)
	require.NoError(t, err)
	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 30*time.Second)
}

func TestRedisTrackerWithoutTTLKeepsKey(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	tr := NewRedisTracker(rdb, 0)
	session := testSession(t, rdb)

	_, err := tr.Next(ctx, session)
	require.NoError(t, err)
	ttl, err := rdb.TTL(ctx, submissionKeyPrefix+session).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}
