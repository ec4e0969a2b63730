package remote

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentuity/go-ttlcache/cache"
)

var _ cache.RemoteStore = (*Redis)(nil)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisPutGet(t *testing.T) {
	_, client := newTestRedis(t)
	s := NewRedis(client)
	ctx := context.Background()

	data, found, err := s.Get(ctx, "string", "a")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	require.NoError(t, s.Put(ctx, "string", "a", []byte("b")))
	data, found, err = s.Get(ctx, "string", "a")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("b"), data)

	// upsert
	require.NoError(t, s.Put(ctx, "string", "a", []byte("c")))
	data, _, _ = s.Get(ctx, "string", "a")
	assert.Equal(t, []byte("c"), data)
}

func TestRedisTypeTagsAreSeparate(t *testing.T) {
	_, client := newTestRedis(t)
	s := NewRedis(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "int", "1", []byte{1}))
	_, found, err := s.Get(ctx, "string", "1")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRedisPrefixAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedis(client, WithPrefix("sessions"), WithTTL(2*time.Second))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "string", "k", []byte("v")))
	assert.True(t, mr.Exists("sessions:string:k"))
	assert.Equal(t, 2*time.Second, mr.TTL("sessions:string:k"))

	mr.FastForward(3 * time.Second)
	_, found, err := s.Get(ctx, "string", "k")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRedisUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedis(client, WithQueryTimeout(200*time.Millisecond))
	mr.Close()

	ctx := context.Background()
	assert.Error(t, s.Put(ctx, "string", "a", []byte("b")))
	_, found, err := s.Get(ctx, "string", "a")
	assert.Error(t, err)
	assert.False(t, found)
}
