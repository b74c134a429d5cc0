package dedupe

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, time.Minute), m
}

func TestRedis_ClaimCompleteLookup(t *testing.T) {
	r, _ := newRedis(t)
	ctx := context.Background()

	ok, err := r.Claim(ctx, "owner", "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Claim(ctx, "owner", "k1")
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	_, done, err := r.Lookup(ctx, "owner", "k1")
	require.NoError(t, err)
	assert.False(t, done, "in progress")

	require.NoError(t, r.Complete(ctx, "owner", "k1", []byte(`{"success":true}`)))
	body, done, err := r.Lookup(ctx, "owner", "k1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.JSONEq(t, `{"success":true}`, string(body))
}

func TestRedis_ScopesAreSeparate(t *testing.T) {
	r, _ := newRedis(t)
	ctx := context.Background()
	ok, err := r.Claim(ctx, "a", "k")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.Claim(ctx, "b", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_ReleaseAllowsRetry(t *testing.T) {
	r, _ := newRedis(t)
	ctx := context.Background()
	_, err := r.Claim(ctx, "owner", "k")
	require.NoError(t, err)
	require.NoError(t, r.Release(ctx, "owner", "k"))
	ok, err := r.Claim(ctx, "owner", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_KeysExpire(t *testing.T) {
	r, m := newRedis(t)
	ctx := context.Background()
	_, err := r.Claim(ctx, "owner", "k")
	require.NoError(t, err)
	m.FastForward(2 * time.Minute)
	ok, err := r.Claim(ctx, "owner", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen(t *testing.T) {
	m := miniredis.RunT(t)
	client, err := Open(context.Background(), "redis://"+m.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Open(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	ok, err := s.Claim(context.Background(), "s", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	_, done, _ := s.Lookup(context.Background(), "s", "k")
	assert.False(t, done)
}
