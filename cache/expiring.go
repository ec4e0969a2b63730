package cache

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/agentuity/go-ttlcache/logger"
)

// ExpiredFunc is called once for every entry evicted because it expired.
// It runs synchronously on whichever goroutine discovered the expiry.
type ExpiredFunc[K comparable, T any] func(key K, value T)

// Expiring is a concurrent map of entries that expire after a TTL.
//
// Expired entries are evicted on two paths: ContainsKey removes an expired
// entry it finds, and a background sweep calls ClearExpiredItems
// periodically. Either path fires the ExpiredFunc exactly once per evicted
// entry.
type Expiring[K comparable, T any] struct {
	ctx        context.Context
	cancel     context.CancelFunc
	items      *store[K, T]
	onExpired  ExpiredFunc[K, T]
	defaultTTL atomic.Int64
	frequency  atomic.Int64
	reschedule chan struct{}
	clock      Clock
	logger     logger.Logger
	waitGroup  sync.WaitGroup
	once       sync.Once
	sweeping   atomic.Bool
}

// NewExpiring returns a new Expiring cache and starts its background sweep.
// onExpired may be nil. The sweep stops when Close is called or parent is
// cancelled.
func NewExpiring[K comparable, T any](parent context.Context, onExpired ExpiredFunc[K, T], opts ...Option) *Expiring[K, T] {
	return newExpiring(parent, onExpired, applyOptions(opts))
}

// NewExpiringFrom is like NewExpiring but pre-loads seed with the default
// TTL.
func NewExpiringFrom[K comparable, T any](parent context.Context, seed map[K]T, onExpired ExpiredFunc[K, T], opts ...Option) *Expiring[K, T] {
	c := newExpiring(parent, onExpired, applyOptions(opts))
	for k, v := range seed {
		c.items.upsert(k, c.newEntry(v, c.DefaultTTL()))
	}
	return c
}

func newExpiring[K comparable, T any](parent context.Context, onExpired ExpiredFunc[K, T], cfg config) *Expiring[K, T] {
	ctx, cancel := context.WithCancel(parent)
	c := &Expiring[K, T]{
		ctx:        ctx,
		cancel:     cancel,
		items:      newStore[K, T](cfg.shards),
		onExpired:  onExpired,
		reschedule: make(chan struct{}, 1),
		clock:      cfg.clock,
		logger:     cfg.logger.WithPrefix("[expiring]"),
	}
	c.defaultTTL.Store(int64(cfg.defaultTTL))
	c.frequency.Store(int64(cfg.sweepFrequency))
	c.waitGroup.Add(1)
	go c.run()
	return c
}

func (c *Expiring[K, T]) newEntry(value T, ttl time.Duration) *Entry[T] {
	e := NewEntryAt(value, c.clock.Now(), ttl)
	return &e
}

func (c *Expiring[K, T]) notify(key K, value T) {
	if c.onExpired != nil {
		c.onExpired(key, value)
	}
}

// DefaultTTL returns the TTL used when none is given.
func (c *Expiring[K, T]) DefaultTTL() time.Duration {
	return time.Duration(c.defaultTTL.Load())
}

// SetDefaultTTL changes the TTL used by later writes that give none.
// Existing entries keep their TTL.
func (c *Expiring[K, T]) SetDefaultTTL(d time.Duration) {
	c.defaultTTL.Store(int64(d))
}

// SweepFrequency returns the background sweep period.
func (c *Expiring[K, T]) SweepFrequency() time.Duration {
	return time.Duration(c.frequency.Load())
}

// SetSweepFrequency changes the sweep period. A sweep runs right away and
// then every d; a value <= 0 stops the periodic sweep after that run.
func (c *Expiring[K, T]) SetSweepFrequency(d time.Duration) {
	c.frequency.Store(int64(d))
	select {
	case c.reschedule <- struct{}{}:
	default:
	}
}

// Add inserts value under key with the default TTL. It is a no-op when the
// key is already present; the return value reports whether it inserted.
func (c *Expiring[K, T]) Add(key K, value T) bool {
	return c.items.insert(key, c.newEntry(value, c.DefaultTTL()))
}

// AddTTL inserts value under key with the given TTL if the key is absent.
func (c *Expiring[K, T]) AddTTL(key K, value T, ttl time.Duration) bool {
	return c.items.insert(key, c.newEntry(value, ttl))
}

// AddExpires inserts value under key, expiring at the given instant, if the
// key is absent.
func (c *Expiring[K, T]) AddExpires(key K, value T, expires time.Time) bool {
	e := NewEntryAtExpires(value, c.clock.Now(), expires)
	return c.items.insert(key, &e)
}

// AddEntry inserts a prebuilt entry if the key is absent.
func (c *Expiring[K, T]) AddEntry(key K, entry Entry[T]) bool {
	return c.items.insert(key, &entry)
}

// Set replaces the entry for key with value and the default TTL. Unlike
// Add it never inserts: when the key is absent Set does nothing and
// returns false.
func (c *Expiring[K, T]) Set(key K, value T) bool {
	return c.SetTTL(key, value, c.DefaultTTL())
}

// SetTTL is Set with an explicit TTL.
func (c *Expiring[K, T]) SetTTL(key K, value T, ttl time.Duration) bool {
	old, ok := c.items.load(key)
	if !ok {
		return false
	}
	return c.items.replace(key, old, c.newEntry(value, ttl))
}

// SetExpires is Set with an explicit expiry instant.
func (c *Expiring[K, T]) SetExpires(key K, value T, expires time.Time) bool {
	old, ok := c.items.load(key)
	if !ok {
		return false
	}
	e := NewEntryAtExpires(value, c.clock.Now(), expires)
	return c.items.replace(key, old, &e)
}

// Update restamps the entry for key with ts, keeping its value and TTL,
// which restarts its expiry window. It returns false if the key is absent
// or changed concurrently.
func (c *Expiring[K, T]) Update(key K, ts time.Time) bool {
	old, ok := c.items.load(key)
	if !ok {
		return false
	}
	e := old.WithTimestamp(ts)
	return c.items.replace(key, old, &e)
}

// ContainsKey reports whether key is present and not expired. An expired
// entry is removed and the ExpiredFunc fires before false is returned.
func (c *Expiring[K, T]) ContainsKey(key K) bool {
	for {
		e, ok := c.items.load(key)
		if !ok {
			return false
		}
		if !e.ExpiredAt(c.clock.Now()) {
			return true
		}
		if c.items.compareAndDelete(key, e) {
			c.notify(key, e.Value)
			return false
		}
		// the entry was replaced or removed since it was read; look again
	}
}

// TryGet returns the stored value without checking expiry. Pair it with
// ContainsKey to read only live values.
func (c *Expiring[K, T]) TryGet(key K) (T, bool) {
	e, ok := c.items.load(key)
	if !ok {
		var zero T
		return zero, false
	}
	return e.Value, true
}

// Get returns the stored value or the zero value.
func (c *Expiring[K, T]) Get(key K) T {
	v, _ := c.TryGet(key)
	return v
}

// Entry returns a copy of the stored entry.
func (c *Expiring[K, T]) Entry(key K) (Entry[T], bool) {
	e, ok := c.items.load(key)
	if !ok {
		return Entry[T]{}, false
	}
	return *e, true
}

// Remove deletes key without firing the ExpiredFunc.
func (c *Expiring[K, T]) Remove(key K) bool {
	_, ok := c.items.delete(key)
	return ok
}

// ClearExpiredItems removes every expired entry and fires the ExpiredFunc
// for each one it removed. It returns the number of entries removed.
//
// Removal is conditional on the entry still being the one seen by the scan,
// so a key rewritten while the sweep runs keeps its new entry.
func (c *Expiring[K, T]) ClearExpiredItems() int {
	now := c.clock.Now()
	var removed int
	for key, e := range c.items.snapshot() {
		if !e.ExpiredAt(now) {
			continue
		}
		if c.items.compareAndDelete(key, e) {
			removed++
			c.notify(key, e.Value)
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Expiring[K, T]) Len() int {
	return c.items.len()
}

// Keys returns the stored keys in no particular order.
func (c *Expiring[K, T]) Keys() []K {
	snap := c.items.snapshot()
	keys := make([]K, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	return keys
}

// Values returns the stored values in no particular order.
func (c *Expiring[K, T]) Values() []T {
	snap := c.items.snapshot()
	values := make([]T, 0, len(snap))
	for _, e := range snap {
		values = append(values, e.Value)
	}
	return values
}

// All iterates over a snapshot of the cache.
func (c *Expiring[K, T]) All() iter.Seq2[K, T] {
	snap := c.items.snapshot()
	return func(yield func(K, T) bool) {
		for k, e := range snap {
			if !yield(k, e.Value) {
				return
			}
		}
	}
}

// Clear removes every entry without firing the ExpiredFunc.
func (c *Expiring[K, T]) Clear() {
	c.items.clear()
}

// Close stops the background sweep. It is safe to call more than once,
// including from an ExpiredFunc. The map stays usable. A sweep in progress
// runs to completion and Close does not wait for it; otherwise Close waits
// for the sweep goroutine to exit.
func (c *Expiring[K, T]) Close() error {
	c.once.Do(c.cancel)
	if !c.sweeping.Load() {
		c.waitGroup.Wait()
	}
	return nil
}

func (c *Expiring[K, T]) sweep() {
	var removed int
	if r := panics.Try(func() { removed = c.ClearExpiredItems() }); r != nil {
		c.logger.Error("expiration handler panicked: %v", r.Value)
		return
	}
	if removed > 0 {
		c.logger.Debug("sweep removed %d expired entries", removed)
	} else {
		c.logger.Trace("sweep found no expired entries")
	}
}

func (c *Expiring[K, T]) run() {
	defer c.waitGroup.Done()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	if d := c.SweepFrequency(); d > 0 {
		timer.Reset(d)
	}
	defer timer.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reschedule:
			timer.Reset(0)
		case <-timer.C:
			c.sweeping.Store(true)
			if c.ctx.Err() != nil {
				c.sweeping.Store(false)
				return
			}
			c.sweep()
			c.sweeping.Store(false)
			if d := c.SweepFrequency(); d > 0 {
				timer.Reset(d)
			}
		}
	}
}
