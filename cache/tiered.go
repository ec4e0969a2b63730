package cache

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/agentuity/go-ttlcache/codec"
	"github.com/agentuity/go-ttlcache/logger"
)

// Tiered layers an Expiring cache over a RemoteStore.
//
// Writes go to the local tier when it is locally cacheable and to the remote
// store when it is remotely cacheable; the two writes are independent and a
// remote failure is logged and dropped. Reads try the local tier first and
// fall back to the remote store, copying a remote hit into the local tier
// with the default TTL.
//
// The ctx passed to each method is handed to the store, which bounds every
// call by its own fixed query timeout (remote.DefaultQueryTimeout). That
// timeout is the binding limit; ctx is only for cancellation.
type Tiered[K comparable, T any] struct {
	local             *Expiring[K, T]
	store             RemoteStore
	codec             Codec[T]
	typeTag           string
	formatKey         func(key any) string
	locallyCacheable  atomic.Bool
	remotelyCacheable atomic.Bool
	logger            logger.Logger
}

// NewTiered returns a Tiered cache over store. A nil store disables the
// remote tier; a nil codec selects msgpack. The store is not owned: Close
// only stops the local tier.
func NewTiered[K comparable, T any](parent context.Context, store RemoteStore, valueCodec Codec[T], onExpired ExpiredFunc[K, T], opts ...Option) *Tiered[K, T] {
	cfg := applyOptions(opts)
	if valueCodec == nil {
		valueCodec = codec.Msgpack[T]{}
	}
	typeTag := cfg.typeTag
	if typeTag == "" {
		typeTag = reflect.TypeFor[T]().String()
	}
	c := &Tiered[K, T]{
		local:     newExpiring(parent, onExpired, cfg),
		store:     store,
		codec:     valueCodec,
		typeTag:   typeTag,
		formatKey: cfg.formatKey,
		logger:    cfg.logger.WithPrefix("[tiered]"),
	}
	c.locallyCacheable.Store(cfg.locallyCacheable)
	c.remotelyCacheable.Store(cfg.remotelyCacheable)
	return c
}

// Local returns the local tier.
func (c *Tiered[K, T]) Local() *Expiring[K, T] {
	return c.local
}

// TypeTag returns the tag values are stored under remotely.
func (c *Tiered[K, T]) TypeTag() string {
	return c.typeTag
}

// IsLocallyCacheable reports whether the local tier is read and written.
func (c *Tiered[K, T]) IsLocallyCacheable() bool {
	return c.locallyCacheable.Load()
}

// SetLocallyCacheable turns the local tier on or off. Existing local
// entries are kept.
func (c *Tiered[K, T]) SetLocallyCacheable(v bool) {
	c.locallyCacheable.Store(v)
}

// IsRemotelyCacheable is false whenever no store is configured.
func (c *Tiered[K, T]) IsRemotelyCacheable() bool {
	return c.store != nil && c.remotelyCacheable.Load()
}

// SetRemotelyCacheable turns the remote tier on or off.
func (c *Tiered[K, T]) SetRemotelyCacheable(v bool) {
	c.remotelyCacheable.Store(v)
}

func (c *Tiered[K, T]) putRemote(ctx context.Context, key K, value T) {
	k := c.formatKey(key)
	data, err := c.codec.Encode(value)
	if err != nil {
		c.logger.Error("remote put %s/%s: %v", c.typeTag, k, err)
		return
	}
	if err := c.store.Put(ctx, c.typeTag, k, data); err != nil {
		c.logger.Error("remote put %s/%s: %v", c.typeTag, k, err)
	}
}

func (c *Tiered[K, T]) getRemote(ctx context.Context, key K) (T, bool) {
	var zero T
	k := c.formatKey(key)
	data, found, err := c.store.Get(ctx, c.typeTag, k)
	if err != nil {
		c.logger.Error("remote get %s/%s: %v", c.typeTag, k, err)
		return zero, false
	}
	if !found {
		return zero, false
	}
	value, err := c.codec.Decode(data)
	if err != nil {
		c.logger.Error("remote get %s/%s: %v", c.typeTag, k, err)
		return zero, false
	}
	return value, true
}

// fetch reads key from the remote store and back-fills the local tier with
// the default TTL when it is locally cacheable.
func (c *Tiered[K, T]) fetch(ctx context.Context, key K) (T, bool) {
	if !c.IsRemotelyCacheable() {
		var zero T
		return zero, false
	}
	value, ok := c.getRemote(ctx, key)
	if ok && c.IsLocallyCacheable() {
		c.local.Add(key, value)
	}
	return value, ok
}

// Add inserts value with the default TTL. The local write is insert-only;
// the remote write is an upsert.
func (c *Tiered[K, T]) Add(ctx context.Context, key K, value T) {
	c.AddTTL(ctx, key, value, c.local.DefaultTTL())
}

// AddTTL is Add with an explicit local TTL.
func (c *Tiered[K, T]) AddTTL(ctx context.Context, key K, value T, ttl time.Duration) {
	if c.IsLocallyCacheable() {
		c.local.AddTTL(key, value, ttl)
	}
	if c.IsRemotelyCacheable() {
		c.putRemote(ctx, key, value)
	}
}

// AddExpires is Add with an explicit local expiry instant.
func (c *Tiered[K, T]) AddExpires(ctx context.Context, key K, value T, expires time.Time) {
	if c.IsLocallyCacheable() {
		c.local.AddExpires(key, value, expires)
	}
	if c.IsRemotelyCacheable() {
		c.putRemote(ctx, key, value)
	}
}

// AddEntry is Add with a prebuilt local entry.
func (c *Tiered[K, T]) AddEntry(ctx context.Context, key K, entry Entry[T]) {
	if c.IsLocallyCacheable() {
		c.local.AddEntry(key, entry)
	}
	if c.IsRemotelyCacheable() {
		c.putRemote(ctx, key, entry.Value)
	}
}

// ContainsKey reports whether key is live locally or present remotely.
// A remote hit is copied into the local tier when it is locally cacheable.
func (c *Tiered[K, T]) ContainsKey(ctx context.Context, key K) bool {
	if c.IsLocallyCacheable() && c.local.ContainsKey(key) {
		return true
	}
	_, ok := c.fetch(ctx, key)
	return ok
}

// TryGet returns the live local value or, failing that, the remote value.
func (c *Tiered[K, T]) TryGet(ctx context.Context, key K) (T, bool) {
	if c.IsLocallyCacheable() && c.local.ContainsKey(key) {
		if v, ok := c.local.TryGet(key); ok {
			return v, true
		}
	}
	return c.fetch(ctx, key)
}

// Get is TryGet returning the zero value on a miss.
func (c *Tiered[K, T]) Get(ctx context.Context, key K) T {
	v, _ := c.TryGet(ctx, key)
	return v
}

// Set stores value under key. When the key is live locally the local entry
// is replaced with the default TTL and the value is pushed remotely;
// otherwise Set behaves like Add. Contrast with Expiring.Set, which never
// inserts.
func (c *Tiered[K, T]) Set(ctx context.Context, key K, value T) {
	if c.IsLocallyCacheable() && c.local.ContainsKey(key) && c.local.Set(key, value) {
		if c.IsRemotelyCacheable() {
			c.putRemote(ctx, key, value)
		}
		return
	}
	c.Add(ctx, key, value)
}

// Remove deletes key from the local tier only.
func (c *Tiered[K, T]) Remove(key K) bool {
	return c.local.Remove(key)
}

// ClearExpiredItems sweeps the local tier.
func (c *Tiered[K, T]) ClearExpiredItems() int {
	return c.local.ClearExpiredItems()
}

// Close stops the local tier's sweep. The remote store is left open.
func (c *Tiered[K, T]) Close() error {
	return c.local.Close()
}
