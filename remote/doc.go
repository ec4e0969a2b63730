// Package remote implements the persistent second tier used by cache.Tiered.
//
// [Redis] keeps each object in a hash under "<prefix>:<type>:<key>" with a
// native Redis TTL. [SQLite] keeps objects in a single table keyed by type
// and key, so they survive restarts. Both apply a fixed per-command timeout
// ([DefaultQueryTimeout]) and make exactly one attempt per call.
package remote
