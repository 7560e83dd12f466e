package cache

import (
	"sync"
)

// Store is a concurrency-safe in-memory key/value map with a bulk Clear.
// Values are copied in and out, so readers never share state with writers.
type Store[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]V
}

// NewStore creates an empty store. The name labels metrics and log lines.
func NewStore[V any](name string) *Store[V] {
	CacheEntries.WithLabelValues(name).Set(0)
	return &Store[V]{
		name:    name,
		entries: make(map[string]V),
	}
}

// Name returns the store's name.
func (s *Store[V]) Name() string {
	return s.name
}

// Get returns the value stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		CacheHits.WithLabelValues(s.name).Inc()
	} else {
		CacheMisses.WithLabelValues(s.name).Inc()
	}
	return value, ok
}

// Put inserts or overwrites the value stored under key.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	s.entries[key] = value
	n := len(s.entries)
	s.mu.Unlock()

	CacheEntries.WithLabelValues(s.name).Set(float64(n))
}

// Clear drops every entry and returns how many were dropped.
// The map is swapped under the write lock: a concurrent Get sees either the
// complete old value or nothing.
func (s *Store[V]) Clear() int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]V)
	s.mu.Unlock()

	CacheClears.WithLabelValues(s.name).Inc()
	CacheEntries.WithLabelValues(s.name).Set(0)
	return n
}

// Len returns the current number of entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
