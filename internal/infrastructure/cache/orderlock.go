package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/zlpay/internal/shared/logger"
)

const (
	orderLockKeyPrefix = "zlpay:order_lock:"
	lockRetryInterval  = 50 * time.Millisecond
)

// ErrLockTimeout is returned when another holder keeps the order lock for
// longer than the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for order lock")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOrderLocker serialises settlement across instances sharing one Redis.
type RedisOrderLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger logger.Interface
}

func NewRedisOrderLocker(client *redis.Client, ttl, wait time.Duration, log logger.Interface) *RedisOrderLocker {
	return &RedisOrderLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: log,
	}
}

// Format: zlpay:order_lock:{order_id}
func (l *RedisOrderLocker) buildKey(orderID uint) string {
	return fmt.Sprintf("%s%d", orderLockKeyPrefix, orderID)
}

func (l *RedisOrderLocker) Lock(ctx context.Context, orderID uint) (func(), error) {
	key := l.buildKey(orderID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire order lock: %w", err)
		}
		if acquired {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisOrderLocker) release(key, token string) {
	// the caller's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warnw("failed to release order lock", "key", key, "error", err)
	}
}

// MemoryOrderLocker is the single-instance locker used when Redis is disabled.
// An order's entry lives only while someone holds or waits for its lock.
type MemoryOrderLocker struct {
	mu    sync.Mutex
	locks map[uint]*memorySlot
	wait  time.Duration
}

type memorySlot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryOrderLocker(wait time.Duration) *MemoryOrderLocker {
	return &MemoryOrderLocker{
		locks: make(map[uint]*memorySlot),
		wait:  wait,
	}
}

func (l *MemoryOrderLocker) acquire(orderID uint) *memorySlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.locks[orderID]
	if !ok {
		slot = &memorySlot{ch: make(chan struct{}, 1)}
		l.locks[orderID] = slot
	}
	slot.refs++
	return slot
}

func (l *MemoryOrderLocker) release(orderID uint, slot *memorySlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.locks, orderID)
	}
}

// Len reports how many orders currently have a held or awaited lock.
func (l *MemoryOrderLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *MemoryOrderLocker) Lock(ctx context.Context, orderID uint) (func(), error) {
	slot := l.acquire(orderID)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(orderID, slot)
			})
		}, nil
	case <-timer.C:
		l.release(orderID, slot)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		l.release(orderID, slot)
		return nil, ctx.Err()
	}
}
