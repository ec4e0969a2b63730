package cache

import (
	"hash/maphash"
	"math/bits"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type shard[K comparable, T any] struct {
	mu sync.RWMutex
	m  map[K]*Entry[T]
}

// store is a lock-striped map of entries. Entries are compared by pointer,
// so replace and compareAndDelete succeed only if the entry read earlier is
// still the current one.
type store[K comparable, T any] struct {
	shards []*shard[K, T]
	mask   uint64
	hash   func(K) uint64
}

func newStore[K comparable, T any](n int) *store[K, T] {
	if n < 1 {
		n = 1
	}
	size := 1 << bits.Len(uint(n-1))
	shards := make([]*shard[K, T], size)
	for i := range shards {
		shards[i] = &shard[K, T]{m: make(map[K]*Entry[T])}
	}
	return &store[K, T]{
		shards: shards,
		mask:   uint64(size - 1),
		hash:   keyHasher[K](),
	}
}

// keyHasher picks xxhash for string keys and maphash for any other
// comparable key type.
func keyHasher[K comparable]() func(K) uint64 {
	var zero K
	if _, ok := any(zero).(string); ok {
		return func(key K) uint64 {
			return xxhash.Sum64String(any(key).(string))
		}
	}
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

func (s *store[K, T]) shardFor(key K) *shard[K, T] {
	return s.shards[s.hash(key)&s.mask]
}

func (s *store[K, T]) load(key K) (*Entry[T], bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	e, ok := sh.m[key]
	sh.mu.RUnlock()
	return e, ok
}

// insert stores e only if key is absent.
func (s *store[K, T]) insert(key K, e *Entry[T]) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.m[key]; ok {
		return false
	}
	sh.m[key] = e
	return true
}

// upsert stores e regardless of what is present.
func (s *store[K, T]) upsert(key K, e *Entry[T]) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	sh.m[key] = e
	sh.mu.Unlock()
}

// replace swaps old for e only if old is still the stored entry.
func (s *store[K, T]) replace(key K, old, e *Entry[T]) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if cur, ok := sh.m[key]; !ok || cur != old {
		return false
	}
	sh.m[key] = e
	return true
}

func (s *store[K, T]) delete(key K) (*Entry[T], bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[key]
	if ok {
		delete(sh.m, key)
	}
	return e, ok
}

// compareAndDelete removes key only if old is still the stored entry.
func (s *store[K, T]) compareAndDelete(key K, old *Entry[T]) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if cur, ok := sh.m[key]; !ok || cur != old {
		return false
	}
	delete(sh.m, key)
	return true
}

// snapshot copies every key/entry pair. Each shard is locked only while it
// is copied.
func (s *store[K, T]) snapshot() map[K]*Entry[T] {
	out := make(map[K]*Entry[T], s.len())
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k, e := range sh.m {
			out[k] = e
		}
		sh.mu.RUnlock()
	}
	return out
}

func (s *store[K, T]) len() int {
	var n int
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.m)
		sh.mu.RUnlock()
	}
	return n
}

func (s *store[K, T]) clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		clear(sh.m)
		sh.mu.Unlock()
	}
}
