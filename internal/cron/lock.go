package cron

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LockStore is the Redis surface the distributed lock needs.
type LockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(name string) string
}

// RedisLock is a best-effort distributed lock so only one worker instance
// runs a job per tick. The token guards against releasing a lock another
// instance acquired after ours expired.
type RedisLock struct {
	store LockStore
	ttl   time.Duration
}

func NewRedisLock(store LockStore, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLock{store: store, ttl: ttl}
}

// Acquire attempts to take the named lock. It returns a release function and
// whether the lock was won.
func (l *RedisLock) Acquire(ctx context.Context, name string) (func(), bool, error) {
	key := l.store.LockKey(name)
	token := uuid.NewString()

	ok, err := l.store.SetNX(ctx, key, token, l.ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	release := func() {
		current, err := l.store.Get(context.Background(), key)
		if err != nil || current != token {
			return
		}
		_ = l.store.Del(context.Background(), key)
	}
	return release, true, nil
}
