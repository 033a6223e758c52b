package lock

import (
	"context"
	"sync"
)

// Locker serializes work per key (a username). Lock returns a context that
// records the held key; locking the same key again with that context is a no-op.
type Locker interface {
	Lock(ctx context.Context, key string) (context.Context, func(), error)
}

type heldKey struct{ key string }

func held(ctx context.Context, key string) bool {
	_, ok := ctx.Value(heldKey{key}).(struct{})
	return ok
}

func markHeld(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, heldKey{key}, struct{}{})
}

func noop() {}

type entry struct {
	sem  chan struct{}
	refs int
}

// Local is an in-process keyed mutex.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	if held(ctx, key) {
		return ctx, noop, nil
	}
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e, false)
		return ctx, noop, ctx.Err()
	}
	var once sync.Once
	return markHeld(ctx, key), func() { once.Do(func() { l.release(key, e, true) }) }, nil
}

func (l *Local) release(key string, e *entry, acquired bool) {
	if acquired {
		<-e.sem
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
