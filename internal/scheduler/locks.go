package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const reconcileLockKey = "benchstay:lock:market_reconcile"

var ErrLockNotObtained = errors.New("lock_not_obtained")

// Locker serializes a job across replicas.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// NewLocker returns a redislock-backed locker, or a process-local one when Redis is not configured.
func NewLocker(client *redis.Client) Locker {
	if client == nil {
		return localLocker{}
	}
	return &redisLocker{client: redislock.New(client)}
}

type redisLocker struct {
	client *redislock.Client
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}

// localLocker is used by single-replica deployments. The cron runner already skips overlapping runs.
type localLocker struct{}

func (localLocker) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
