package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyedMutex serializes work per meter inside a single process.
type KeyedMutex struct {
	mu   sync.Mutex
	sems map[int64]chan struct{}
}

// NewKeyedMutex returns an in-process per-meter lock.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{sems: make(map[int64]chan struct{})}
}

// Acquire blocks until the meter's slot is free or the context is done.
// The returned func releases the slot.
func (k *KeyedMutex) Acquire(ctx context.Context, meterID int64) (func(), error) {
	k.mu.Lock()
	sem, ok := k.sems[meterID]
	if !ok {
		sem = make(chan struct{}, 1)
		k.sems[meterID] = sem
	}
	k.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lock reclaimed by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLock serializes per-meter work across service instances using
// SET NX with a TTL.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLock returns a redis-backed per-meter lock.
func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{
		client: client,
		ttl:    defaultLockTTL,
		retry:  defaultLockRetry,
	}
}

func lockKey(meterID int64) string {
	return fmt.Sprintf("vending:meter-lock:%d", meterID)
}

// Acquire polls SET NX until the lock is held or the context is done.
func (l *RedisLock) Acquire(ctx context.Context, meterID int64) (func(), error) {
	key := lockKey(meterID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
