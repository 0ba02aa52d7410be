// Package cache keeps the last good value per key and refreshes it once it is older than
// the freshness window. Failed refreshes never discard a value that was already served.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketsnap/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultFreshness = 5 * time.Minute

// Lookup outcomes reported to the Observer.
const (
	ResultHit         = "hit"
	ResultRefreshed   = "refreshed"
	ResultStale       = "stale"
	ResultColdFailure = "cold_failure"
)

// FetchFunc produces a fresh value for key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

type Observer interface {
	ObserveLookup(cache, result string)
}

// Entry is the value last stored for a key together with the time of the refresh that
// produced it.
type Entry[V any] struct {
	Value       V
	RefreshedAt time.Time
}

type TTL[K comparable, V any] struct {
	name      string
	freshness time.Duration
	fetch     FetchFunc[K, V]
	now       func() time.Time
	observer  Observer

	mu      sync.RWMutex
	entries map[K]Entry[V]

	// coalesce concurrent refreshes per key
	sf singleflight.Group
}

type Option[K comparable, V any] func(*TTL[K, V])

func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTL[K, V]) { c.now = now }
}

func WithObserver[K comparable, V any](o Observer) Option[K, V] {
	return func(c *TTL[K, V]) { c.observer = o }
}

func New[K comparable, V any](name string, freshness time.Duration, fetch FetchFunc[K, V], opts ...Option[K, V]) *TTL[K, V] {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	c := &TTL[K, V]{
		name:      name,
		freshness: freshness,
		fetch:     fetch,
		now:       time.Now,
		entries:   make(map[K]Entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TTL[K, V]) Name() string { return c.name }

// Peek returns the stored entry for key without triggering a refresh.
func (c *TTL[K, V]) Peek(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Get returns the cached value while it is fresh and refreshes it otherwise.
// When the refresh fails the previous value is returned without error; with no previous
// value the error wraps domain.ErrAggregateFailure.
//
// A caller whose ctx ends while waiting on a refresh gets ctx.Err(), even when a stale
// value exists; the refresh itself keeps running for the other waiters.
func (c *TTL[K, V]) Get(ctx context.Context, key K) (V, error) {
	if e, ok := c.Peek(key); ok && c.fresh(e) {
		c.observe(ResultHit)
		return e.Value, nil
	}

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-c.refresh(ctx, key, false):
		if res.Err == nil {
			out := res.Val.(refreshed[V])
			if out.reused {
				c.observe(ResultHit)
			} else {
				c.observe(ResultRefreshed)
			}
			return out.entry.Value, nil
		}
		if e, ok := c.Peek(key); ok {
			c.observe(ResultStale)
			logrus.WithError(res.Err).WithFields(logrus.Fields{
				"cache":        c.name,
				"key":          fmt.Sprint(key),
				"refreshed_at": e.RefreshedAt,
			}).Warn("refresh failed, serving stale value")
			return e.Value, nil
		}
		c.observe(ResultColdFailure)
		return zero, fmt.Errorf("%w: %s %v: %w", domain.ErrAggregateFailure, c.name, key, res.Err)
	}
}

// Refresh fetches key regardless of the age of its entry. A failed refresh leaves the
// stored entry untouched and returns the fetch error. Concurrent Get and Refresh calls for
// the same key share one fetch.
func (c *TTL[K, V]) Refresh(ctx context.Context, key K) (V, error) {
	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-c.refresh(ctx, key, true):
		if res.Err != nil {
			return zero, fmt.Errorf("refresh %s %v: %w", c.name, key, res.Err)
		}
		return res.Val.(refreshed[V]).entry.Value, nil
	}
}

type refreshed[V any] struct {
	entry Entry[V]
	// reused is set when a fresh entry was found and no fetch happened
	reused bool
}

func (c *TTL[K, V]) fresh(e Entry[V]) bool {
	return c.now().Sub(e.RefreshedAt) < c.freshness
}

func (c *TTL[K, V]) refresh(ctx context.Context, key K, force bool) <-chan singleflight.Result {
	return c.sf.DoChan(fmt.Sprint(key), func() (any, error) {
		// Another caller may have finished a refresh while this one waited for the group.
		if e, ok := c.Peek(key); ok && !force && c.fresh(e) {
			return refreshed[V]{entry: e, reused: true}, nil
		}
		// The refresh is shared, so one caller leaving must not cancel it for the rest.
		v, err := c.fetch(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		e := Entry[V]{Value: v, RefreshedAt: c.now()}
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return refreshed[V]{entry: e}, nil
	})
}

func (c *TTL[K, V]) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveLookup(c.name, result)
	}
}
