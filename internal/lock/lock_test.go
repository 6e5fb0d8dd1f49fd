package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	tripID := types.NewID()

	lease, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, lease)
	assert.Equal(t, tripID, lease.TripID)
	assert.NotEmpty(t, lease.Token)

	t.Run("second acquire is refused immediately", func(t *testing.T) {
		_, err := l.Acquire(ctx, tripID, time.Minute)
		assert.ErrorIs(t, err, ErrHeld)
		assert.Equal(t, types.PLAN_IN_PROGRESS, types.CodeOf(err))
	})

	t.Run("other trips are unaffected", func(t *testing.T) {
		other, err := l.Acquire(ctx, types.NewID(), time.Minute)
		require.NoError(t, err)
		require.NoError(t, l.Release(ctx, other))
	})

	require.NoError(t, l.Release(ctx, lease))
	_, err = l.Acquire(ctx, tripID, time.Minute)
	assert.NoError(t, err, "released lock is free again")
}

func TestMemoryLockerExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Now()
	l.clock = func() time.Time { return now }
	tripID := types.NewID()

	stale, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, tripID, time.Minute)
	require.ErrorIs(t, err, ErrHeld)

	now = now.Add(2 * time.Minute)
	fresh, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err, "expired lease no longer blocks")

	t.Run("stale lease cannot release the new lock", func(t *testing.T) {
		require.NoError(t, l.Release(ctx, stale))
		_, err := l.Acquire(ctx, tripID, time.Minute)
		assert.ErrorIs(t, err, ErrHeld, "fresh lease still holds")
	})

	require.NoError(t, l.Release(ctx, fresh))
}

func TestMemoryLockerReleaseNil(t *testing.T) {
	assert.NoError(t, NewMemoryLocker().Release(context.Background(), nil))
}

func redisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	l, mr := redisLocker(t)
	tripID := types.NewID()

	lease, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err)
	stored, err := mr.Get("plan-lock:" + tripID.String())
	require.NoError(t, err)
	assert.Equal(t, lease.Token, stored)

	_, err = l.Acquire(ctx, tripID, time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, l.Release(ctx, lease))
	assert.False(t, mr.Exists("plan-lock:"+tripID.String()))

	_, err = l.Acquire(ctx, tripID, time.Minute)
	assert.NoError(t, err)
}

func TestRedisLockerExpiry(t *testing.T) {
	ctx := context.Background()
	l, mr := redisLocker(t)
	tripID := types.NewID()

	stale, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	fresh, err := l.Acquire(ctx, tripID, time.Minute)
	require.NoError(t, err, "key expired with the lease TTL")

	t.Run("compare-and-delete refuses the stale token", func(t *testing.T) {
		require.NoError(t, l.Release(ctx, stale))
		assert.True(t, mr.Exists("plan-lock:"+tripID.String()), "fresh lock survives a stale release")
	})

	require.NoError(t, l.Release(ctx, fresh))
}

func TestRedisLockerUnreachable(t *testing.T) {
	ctx := context.Background()
	l, mr := redisLocker(t)
	mr.Close()

	_, err := l.Acquire(ctx, types.NewID(), time.Minute)
	require.Error(t, err)
	assert.Equal(t, types.LOCK_UNAVAILABLE, types.CodeOf(err))
}
