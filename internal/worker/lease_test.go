package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLease_ExclusiveAcrossInstances(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLease(rdb, DefaultLeaseKey, time.Minute)
	second := NewRedisLease(rdb, DefaultLeaseKey, time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL(DefaultLeaseKey))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// releasing a lease we do not hold leaves the owner's key alone
	require.NoError(t, second.Release(ctx))
	assert.True(t, mr.Exists(DefaultLeaseKey))

	require.NoError(t, first.Release(ctx))
	assert.False(t, mr.Exists(DefaultLeaseKey))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLease_ExpiredLeaseIsNotStolenBack(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLease(rdb, DefaultLeaseKey, time.Second)
	second := NewRedisLease(rdb, DefaultLeaseKey, time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, first.Release(ctx))
	assert.True(t, mr.Exists(DefaultLeaseKey))
}

func TestRedisLease_GuardsScheduler(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	other := NewRedisLease(rdb, DefaultLeaseKey, time.Minute)
	ok, err := other.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	sw := newBlockingSweeper()
	close(sw.release)
	sched := NewSweepScheduler(sw, time.Hour, NewRedisLease(rdb, DefaultLeaseKey, time.Minute))

	assert.False(t, sched.Trigger(ctx))
	assert.Equal(t, int32(0), sw.calls.Load())

	require.NoError(t, other.Release(ctx))
	assert.True(t, sched.Trigger(ctx))
	assert.Equal(t, int32(1), sw.calls.Load())
}
