package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/zlpay/internal/shared/logger"
)

type orderLocker interface {
	Lock(ctx context.Context, orderID uint) (func(), error)
}

func newRedisLocker(t *testing.T, ttl, wait time.Duration) (*RedisOrderLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisOrderLocker(client, ttl, wait, logger.NewNopLogger()), mr
}

func assertMutualExclusion(t *testing.T, locker orderLocker) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		holders int32
		maxSeen int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), 42)
			if !assert.NoError(t, err) {
				return
			}

			n := atomic.AddInt32(&holders, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&holders, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestRedisOrderLocker_MutualExclusion(t *testing.T) {
	locker, _ := newRedisLocker(t, 30*time.Second, 5*time.Second)
	assertMutualExclusion(t, locker)
}

func TestRedisOrderLocker_Timeout(t *testing.T) {
	locker, _ := newRedisLocker(t, 30*time.Second, 150*time.Millisecond)

	unlock, err := locker.Lock(context.Background(), 42)
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// other orders are independent
	other, err := locker.Lock(context.Background(), 43)
	require.NoError(t, err)
	other()
}

func TestRedisOrderLocker_ReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newRedisLocker(t, 30*time.Second, time.Second)

	unlock, err := locker.Lock(context.Background(), 42)
	require.NoError(t, err)

	// the lock expired and another instance took it over
	mr.FastForward(31 * time.Second)
	require.NoError(t, mr.Set(locker.buildKey(42), "someone-else"))

	unlock()

	value, err := mr.Get(locker.buildKey(42))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestMemoryOrderLocker_MutualExclusion(t *testing.T) {
	assertMutualExclusion(t, NewMemoryOrderLocker(5*time.Second))
}

func TestMemoryOrderLocker_TimeoutAndCancel(t *testing.T) {
	locker := NewMemoryOrderLocker(50 * time.Millisecond)

	unlock, err := locker.Lock(context.Background(), 42)
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLockTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, 42)
	assert.ErrorIs(t, err, context.Canceled)

	unlock()
	unlock() // second call is a no-op

	again, err := locker.Lock(context.Background(), 42)
	require.NoError(t, err)
	again()
}

func TestMemoryOrderLocker_ReleasesIdleEntries(t *testing.T) {
	locker := NewMemoryOrderLocker(50 * time.Millisecond)

	for id := uint(1); id <= 100; id++ {
		unlock, err := locker.Lock(context.Background(), id)
		require.NoError(t, err)
		unlock()
	}
	assert.Zero(t, locker.Len())

	unlock, err := locker.Lock(context.Background(), 7)
	require.NoError(t, err)
	_, err = locker.Lock(context.Background(), 7)
	require.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 1, locker.Len())

	unlock()
	assert.Zero(t, locker.Len())
}
