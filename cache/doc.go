// Package cache provides an in-process TTL cache and a tiered cache that
// layers it over a remote persistent store.
//
// # Entries
//
// An [Entry] pairs a value with its creation time and TTL. Entries are
// immutable values; every write replaces the stored entry wholesale. An
// entry expires once the clock passes CreatedAt + TTL, and a zero or
// negative TTL is expired from the start.
//
// # Expiring
//
// [Expiring] is a concurrent map of entries, safe for use by any number of
// goroutines without external locking. The map is lock-striped and every
// read-check-write sequence is conditional on the entry read still being
// current, so eviction and caller writes never lose each other's updates.
//
// Expired entries are evicted on two paths:
//
//   - [Expiring.ContainsKey] removes an expired entry it finds before
//     returning false.
//   - A background goroutine calls [Expiring.ClearExpiredItems] every
//     [DefaultSweepFrequency] (configurable with [WithSweepFrequency] and
//     [Expiring.SetSweepFrequency]).
//
// Each eviction fires the [ExpiredFunc] given at construction exactly once,
// on the goroutine that discovered it. [Expiring.Remove] and
// [Expiring.Clear] never fire it.
//
// Writes come in two flavours with deliberately different semantics:
// [Expiring.Add] inserts only when the key is absent, [Expiring.Set]
// replaces only when the key is present.
//
// # Tiered
//
// [Tiered] composes an Expiring cache with a [RemoteStore] and a [Codec].
// Two flags, locally cacheable and remotely cacheable, select which tiers
// are written and read; both can be changed at runtime.
//
//   - Writes go to each enabled tier independently. Remote failures are
//     logged and dropped; the local tier is unaffected.
//   - Reads check the local tier first. On a local miss the remote store is
//     queried, and a remote hit is copied into the local tier with the
//     default TTL when the local tier is enabled.
//   - [Tiered.Set] replaces a live local entry and pushes the value
//     remotely, and otherwise behaves like [Tiered.Add]: unlike
//     [Expiring.Set] it inserts.
//
// Remote misses and remote errors look the same to callers. The remote
// store enforces its own expiry; see package remote for Redis and SQLite
// implementations.
package cache
