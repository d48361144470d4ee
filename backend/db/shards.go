package db

import (
	"hash/maphash"
	"iter"
	"sync"
)

const shardCount = 32

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// shardedMap spreads keys over independently locked shards so operations on
// unrelated ids don't contend on a single mutex.
type shardedMap[V any] struct {
	seed   maphash.Seed
	shards [shardCount]*shard[V]
}

func newShardedMap[V any]() *shardedMap[V] {
	m := &shardedMap[V]{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}

	return m
}

func (m *shardedMap[V]) shardFor(key string) *shard[V] {
	return m.shards[maphash.String(m.seed, key)%shardCount]
}

func (m *shardedMap[V]) Load(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok
}

func (m *shardedMap[V]) Store(key string, v V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = v
}

// StoreIfAbsent inserts v only when key is unused, returning whether it did.
func (m *shardedMap[V]) StoreIfAbsent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return false
	}

	s.items[key] = v
	return true
}

// StoreIfPresent replaces the value for key only when key is already in use.
func (m *shardedMap[V]) StoreIfPresent(key string, v V) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		return false
	}

	s.items[key] = v
	return true
}

// LoadOrStore returns the existing value for key, or stores and returns the
// value built by create.
func (m *shardedMap[V]) LoadOrStore(key string, create func() V) V {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, exists := s.items[key]; exists {
		return v
	}

	v := create()
	s.items[key] = v
	return v
}

func (m *shardedMap[V]) Delete(key string) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		return false
	}

	delete(s.items, key)
	return true
}

// DeleteIf removes key only if match accepts its current value.
func (m *shardedMap[V]) DeleteIf(key string, match func(V) bool) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.items[key]
	if !exists || !match(v) {
		return false
	}

	delete(s.items, key)
	return true
}

func (m *shardedMap[V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}

	return total
}

// All iterates over a point-in-time copy of each shard. No lock is held while
// yielding, and every call starts a fresh enumeration.
func (m *shardedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, s := range m.shards {
			s.mu.RLock()
			keys := make([]string, 0, len(s.items))
			values := make([]V, 0, len(s.items))
			for k, v := range s.items {
				keys = append(keys, k)
				values = append(values, v)
			}
			s.mu.RUnlock()

			for i := range keys {
				if !yield(keys[i], values[i]) {
					return
				}
			}
		}
	}
}
