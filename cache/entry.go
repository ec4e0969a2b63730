package cache

import "time"

// DefaultTimeToLive is the lifetime given to entries created without an
// explicit TTL or expiry.
const DefaultTimeToLive = 20 * time.Minute

// Entry pairs a value with its creation time and time-to-live.
//
// Entries are values: every write builds a new Entry and replaces the stored
// one wholesale, the cache never mutates an entry in place.
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
	TTL       time.Duration
}

// NewEntry returns an entry created now with DefaultTimeToLive.
func NewEntry[T any](value T) Entry[T] {
	return NewEntryAt(value, time.Now(), DefaultTimeToLive)
}

// NewEntryTTL returns an entry created now that lives for ttl.
func NewEntryTTL[T any](value T, ttl time.Duration) Entry[T] {
	return NewEntryAt(value, time.Now(), ttl)
}

// NewEntryExpires returns an entry created now that expires at the given instant.
func NewEntryExpires[T any](value T, expires time.Time) Entry[T] {
	return NewEntryAtExpires(value, time.Now(), expires)
}

// NewEntryAt returns an entry with an explicit creation time and ttl.
func NewEntryAt[T any](value T, createdAt time.Time, ttl time.Duration) Entry[T] {
	return Entry[T]{Value: value, CreatedAt: createdAt, TTL: ttl}
}

// NewEntryAtExpires returns an entry with an explicit creation time that
// expires at the given instant.
func NewEntryAtExpires[T any](value T, createdAt, expires time.Time) Entry[T] {
	return Entry[T]{Value: value, CreatedAt: createdAt}.WithExpires(expires)
}

// ExpiresAt is CreatedAt + TTL.
func (e Entry[T]) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}

// WithExpires returns a copy whose TTL is recomputed so it expires at the
// given instant. CreatedAt is kept.
func (e Entry[T]) WithExpires(expires time.Time) Entry[T] {
	e.TTL = expires.Sub(e.CreatedAt)
	return e
}

// WithTimestamp returns a copy created at ts, keeping value and TTL.
func (e Entry[T]) WithTimestamp(ts time.Time) Entry[T] {
	e.CreatedAt = ts
	return e
}

// ExpiredAt reports whether the entry is stale at now. A zero or negative
// TTL is always expired.
func (e Entry[T]) ExpiredAt(now time.Time) bool {
	return e.TTL <= 0 || now.After(e.ExpiresAt())
}

// HasExpired reports whether the entry is stale according to the wall clock.
// It is evaluated on every call.
func (e Entry[T]) HasExpired() bool {
	return e.ExpiredAt(time.Now())
}
