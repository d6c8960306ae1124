// Package lock provides per-key mutual exclusion with bounded acquisition.
package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"

	"golang.org/x/sync/semaphore"
)

// KeyedProvider serializes work per key: at most one fn runs for a given key
// at any time, while different keys proceed fully in parallel. Entries are
// refcounted so the registry does not grow with the key space.
type KeyedProvider struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyedProvider(logger *slog.Logger) *KeyedProvider {
	return &KeyedProvider{
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// WithLock runs fn while holding the lock for key. Acquisition is bounded by
// timeout; ErrLockTimeout is returned when the lock cannot be taken in time.
// An error from fn is propagated after the lock is released.
func (p *KeyedProvider) WithLock(ctx context.Context, key string, timeout time.Duration, fn func(ctx context.Context) error) error {
	e := p.retain(key)
	defer p.release(key)

	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := e.sem.Acquire(acquireCtx, 1); err != nil {
		p.logger.Warn("lock acquisition timed out", "key", key, "timeout", timeout)
		return errs.Mark(err, errs.ErrLockTimeout)
	}
	defer e.sem.Release(1)

	return fn(ctx)
}

func (p *KeyedProvider) retain(key string) *entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		p.entries[key] = e
	}
	e.refs++
	return e
}

func (p *KeyedProvider) release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(p.entries, key)
	}
}
