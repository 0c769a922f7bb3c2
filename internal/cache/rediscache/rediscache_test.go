package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, c.Del(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr())

	ctx := context.Background()
	ok, n, err := rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.True(t, ok)
	require.Equal(t, int64(2), n)

	ok, n, _ = rl.Allow(ctx, "rl:test", 2, time.Minute)
	require.False(t, ok)
	require.Equal(t, int64(3), n)
}

func TestSeenStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewSeenStore(mr.Addr())

	ctx := context.Background()

	// Unseen occurrence reads as zero.
	n, err := s.LastSeen(ctx, "user-1", "OC-1234")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	require.NoError(t, s.MarkSeen(ctx, "user-1", "OC-1234", 4))

	n, err = s.LastSeen(ctx, "user-1", "OC-1234")
	require.NoError(t, err)
	require.Equal(t, 4, n)

	// Other viewers are isolated.
	n, err = s.LastSeen(ctx, "user-2", "OC-1234")
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
