// Package cache provides a keyed resource cache with revalidation,
// de-duplicated in-flight fetches and sequence-ordered writes.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
)

// Status is the load state of an entry
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of the cached state for one key.
//
// Status is StatusLoading iff Inflight is set, and StatusReady implies HasValue.
// A failed fetch keeps the previous Value so callers may show stale data.
type Entry[V any] struct {
	Value     V
	HasValue  bool
	Status    Status
	FetchedAt time.Time // zero until the first successful fetch
	Err       error
	Inflight  uuid.UUID // uuid.Nil when no fetch is attached to this entry
	Seq       uint64    // sequence number of the last applied write
}

// Kind classifies the entry's error
func (e Entry[V]) Kind() domain.ErrorKind {
	return domain.KindOf(e.Err)
}

// Loading reports whether a fetch is attached to the entry
func (e Entry[V]) Loading() bool {
	return e.Status == StatusLoading
}

// Fetcher loads the value for a key
type Fetcher[V any] func(ctx context.Context) (V, error)

// call is the single outstanding fetch for a key
type call[V any] struct {
	token uuid.UUID
	seq   uint64
	done  chan struct{}
	val   V
	err   error

	// next is a fetch requested after this one was superseded. It is
	// issued when this call settles.
	next  *call[V]
	ctx   context.Context
	fetch Fetcher[V]
}

// Cache is a keyed cache. The zero value is not usable; use New.
type Cache[K comparable, V any] struct {
	name   string
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	entries   map[K]*Entry[V]
	calls     map[K]*call[V] // in-flight registry
	seq       uint64
	observers []func(K, Entry[V])
}

// New creates an empty cache. name is used in log records.
func New[K comparable, V any](name string, logger *slog.Logger) *Cache[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[K, V]{
		name:    name,
		logger:  logger,
		now:     time.Now,
		entries: make(map[K]*Entry[V]),
		calls:   make(map[K]*call[V]),
	}
}

// Observe registers fn to be called after every change to an entry.
// fn runs outside the cache lock; it should re-read state rather than
// rely on notification order.
func (c *Cache[K, V]) Observe(fn func(key K, entry Entry[V])) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Get returns the current entry for key without fetching.
// Unknown keys report an idle entry.
func (c *Cache[K, V]) Get(key K) Entry[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return *e
	}
	return Entry[V]{}
}

// InFlight reports whether a fetch for key is outstanding
func (c *Cache[K, V]) InFlight(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.calls[key]
	return ok
}

// Ensure fetches key unless a fetch is already outstanding, in which case
// the caller joins it and receives the same result. The fetch runs detached
// from ctx: cancelling ctx only stops this caller from waiting.
//
// If the outstanding fetch was superseded by a write and the entry is no
// longer loading, the caller instead waits on a follow-up fetch that is
// issued once the superseded one settles.
func (c *Cache[K, V]) Ensure(ctx context.Context, key K, fetch Fetcher[V]) (V, error) {
	c.mu.Lock()
	if cl, ok := c.calls[key]; ok {
		switch e := c.entry(key); {
		case e.Inflight == cl.token:
		case cl.next != nil && e.Inflight == cl.next.token:
			cl = cl.next
		default:
			return c.queue(ctx, key, cl, fetch)
		}
		c.mu.Unlock()
		c.logger.Debug("joined in-flight fetch", "cache", c.name, "key", key)
		return c.wait(ctx, cl)
	}

	c.seq++
	cl := &call[V]{token: uuid.New(), seq: c.seq, done: make(chan struct{})}
	c.calls[key] = cl

	e := c.entry(key)
	e.Status = StatusLoading
	e.Inflight = cl.token
	snap := *e
	c.mu.Unlock()

	c.logger.Debug("fetch started", "cache", c.name, "key", key, "seq", cl.seq)
	c.notify(key, snap)

	go c.run(context.WithoutCancel(ctx), key, cl, fetch)

	return c.wait(ctx, cl)
}

// queue chains a follow-up fetch behind the superseded call cl and waits
// on it. Caller holds c.mu; queue releases it.
func (c *Cache[K, V]) queue(ctx context.Context, key K, cl *call[V], fetch Fetcher[V]) (V, error) {
	if cl.next == nil {
		cl.next = &call[V]{
			token: uuid.New(),
			done:  make(chan struct{}),
			ctx:   context.WithoutCancel(ctx),
			fetch: fetch,
		}
	}
	next := cl.next

	e := c.entry(key)
	e.Status = StatusLoading
	e.Inflight = next.token
	snap := *e
	c.mu.Unlock()

	c.logger.Debug("queued fetch behind superseded fetch", "cache", c.name, "key", key, "superseded", cl.seq)
	c.notify(key, snap)
	return c.wait(ctx, next)
}

func (c *Cache[K, V]) run(ctx context.Context, key K, cl *call[V], fetch Fetcher[V]) {
	val, err := fetch(ctx)

	c.mu.Lock()
	next := cl.next
	if c.calls[key] == cl {
		if next != nil {
			// The follow-up takes its number now, when it is issued
			c.seq++
			next.seq = c.seq
			c.calls[key] = next
		} else {
			delete(c.calls, key)
		}
	}
	e := c.entry(key)
	if e.Inflight == cl.token {
		e.Inflight = uuid.Nil
	}

	superseded := cl.seq <= e.Seq
	switch {
	case superseded:
		// A newer write landed while the fetch was outstanding; it wins.
		if e.Status == StatusLoading && e.Inflight == uuid.Nil {
			e.Status = settledStatus(e)
		}
		cl.val, cl.err = e.Value, err
	case err != nil:
		e.Status = StatusError
		e.Err = err
		e.Seq = cl.seq
		cl.val, cl.err = e.Value, err
	default:
		e.Value = val
		e.HasValue = true
		e.Status = StatusReady
		e.Err = nil
		e.FetchedAt = c.now()
		e.Seq = cl.seq
		cl.val = val
	}
	snap := *e
	c.mu.Unlock()

	switch {
	case superseded:
		c.logger.Debug("discarded superseded fetch", "cache", c.name, "key", key, "seq", cl.seq, "current", snap.Seq)
	case err != nil:
		c.logger.Error("fetch failed", "cache", c.name, "key", key, "error", err)
	default:
		c.logger.Debug("fetch complete", "cache", c.name, "key", key, "seq", cl.seq)
	}
	c.notify(key, snap)
	close(cl.done)

	if next != nil {
		c.logger.Debug("fetch started", "cache", c.name, "key", key, "seq", next.seq)
		c.run(next.ctx, key, next, next.fetch)
	}
}

func (c *Cache[K, V]) wait(ctx context.Context, cl *call[V]) (V, error) {
	select {
	case <-cl.done:
		return cl.val, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Invalidate moves a ready or errored entry back to idle, keeping its value.
// An in-flight load is left untouched.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.Status == StatusLoading || e.Status == StatusIdle {
		c.mu.Unlock()
		return
	}
	e.Status = StatusIdle
	e.Err = nil
	snap := *e
	c.mu.Unlock()

	c.logger.Debug("invalidated", "cache", c.name, "key", key)
	c.notify(key, snap)
}

// Set writes value directly and marks the entry ready.
// It returns the sequence number assigned to the write.
func (c *Cache[K, V]) Set(key K, value V) uint64 {
	return c.Update(key, func(V, bool) V { return value })
}

// Update atomically replaces the entry's value with fn(current, hasValue)
// and marks it ready. Any fetch issued before the update is discarded when
// it completes.
func (c *Cache[K, V]) Update(key K, fn func(current V, ok bool) V) uint64 {
	c.mu.Lock()
	e := c.entry(key)
	c.seq++
	e.Value = fn(e.Value, e.HasValue)
	e.HasValue = true
	e.Status = StatusReady
	e.Err = nil
	e.Inflight = uuid.Nil
	e.Seq = c.seq
	snap := *e
	c.mu.Unlock()

	c.notify(key, snap)
	return snap.Seq
}

// Seed hydrates an absent entry with a previously persisted value.
// It reports false if the key already has an entry.
func (c *Cache[K, V]) Seed(key K, value V, fetchedAt time.Time) bool {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return false
	}
	e := c.entry(key)
	c.seq++
	e.Value = value
	e.HasValue = true
	e.Status = StatusReady
	e.FetchedAt = fetchedAt
	e.Seq = c.seq
	snap := *e
	c.mu.Unlock()

	c.notify(key, snap)
	return true
}

// entry returns the entry for key, creating it. Caller holds c.mu.
func (c *Cache[K, V]) entry(key K) *Entry[V] {
	e, ok := c.entries[key]
	if !ok {
		e = &Entry[V]{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache[K, V]) notify(key K, e Entry[V]) {
	c.mu.Lock()
	observers := c.observers
	c.mu.Unlock()
	for _, fn := range observers {
		fn(key, e)
	}
}

// settledStatus is the status of an entry with no fetch attached
func settledStatus[V any](e *Entry[V]) Status {
	switch {
	case e.Err != nil:
		return StatusError
	case e.HasValue:
		return StatusReady
	default:
		return StatusIdle
	}
}
