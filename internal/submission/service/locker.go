package service

import (
	"context"
	"sync"

	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

// Locker serializes mutations per submission. The Redis implementation covers
// multi-process deployments; InProcessLocker covers single-node and test
// setups with the same fail-fast contract.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// InProcessLocker hands out one mutex per key. Contended keys fail fast with
// a conflict, matching the distributed locker's behavior.
type InProcessLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewInProcessLocker() *InProcessLocker {
	return &InProcessLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *InProcessLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	if !lock.TryLock() {
		return dErrors.New(dErrors.CodeConflict, "submission is being modified by another request")
	}
	defer lock.Unlock()

	return fn(ctx)
}
