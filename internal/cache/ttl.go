// Package cache memoizes the result of a loader for a fixed time-to-live.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const flightKey = "load"

type Loader[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Value      T
	Err        error
	ComputedAt time.Time
}

// TTL holds the last result of its loader, successful or not, until it is
// older than the configured ttl. Concurrent misses share one load.
type TTL[T any] struct {
	ttl         time.Duration
	load        Loader[T]
	now         func() time.Time
	loadTimeout time.Duration

	mu      sync.RWMutex
	current *Result[T]
	loads   int64

	group singleflight.Group
}

type Option[T any] func(*TTL[T])

func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *TTL[T]) {
		c.now = now
	}
}

// WithLoadTimeout bounds a single load. Loads are detached from the
// caller's cancellation, so this is the only deadline they get.
func WithLoadTimeout[T any](d time.Duration) Option[T] {
	return func(c *TTL[T]) {
		c.loadTimeout = d
	}
}

func NewTTL[T any](ttl time.Duration, load Loader[T], opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		ttl:  ttl,
		load: load,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TTL[T]) Get(ctx context.Context) (T, error) {
	if e, ok := c.fresh(); ok {
		return e.Value, e.Err
	}

	v, _, _ := c.group.Do(flightKey, func() (any, error) {
		if e, ok := c.fresh(); ok {
			return e, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}

		value, err := c.load(loadCtx)
		e := &Result[T]{Value: value, Err: err, ComputedAt: c.now()}

		c.mu.Lock()
		c.current = e
		c.loads++
		c.mu.Unlock()

		return e, nil
	})

	e := v.(*Result[T])
	return e.Value, e.Err
}

// Peek returns the memoized result without loading. ok is false when
// nothing has been loaded yet.
func (c *TTL[T]) Peek() (Result[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return Result[T]{}, false
	}
	return *c.current, true
}

func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// Loads reports how many times the loader ran.
func (c *TTL[T]) Loads() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

func (c *TTL[T]) fresh() (*Result[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, false
	}
	if c.now().Sub(c.current.ComputedAt) >= c.ttl {
		return nil, false
	}
	return c.current, true
}
