package util

import "sync"

// SyncRing wraps Ring with a mutex for concurrent producers.
type SyncRing[T any] struct {
	mu   sync.RWMutex
	ring *Ring[T]
}

// NewSyncRing creates a concurrency-safe ring buffer.
func NewSyncRing[T any](capacity int) *SyncRing[T] {
	return &SyncRing[T]{ring: NewRing[T](capacity)}
}

// Append adds v, evicting the oldest entry when full.
func (r *SyncRing[T]) Append(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring.Append(v)
}

// Len returns the number of stored entries.
func (r *SyncRing[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ring.Len()
}

// Cap returns the fixed capacity.
func (r *SyncRing[T]) Cap() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ring.Cap()
}

// Items returns the entries oldest-first as a new slice.
func (r *SyncRing[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ring.Items()
}

// Last returns up to n most recent entries, oldest-first.
func (r *SyncRing[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ring.Last(n)
}

// SyncMap is a typed mutex-guarded map for low-contention shared state.
type SyncMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewSyncMap creates an empty typed map.
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{m: make(map[K]V)}
}

// Store sets the value for a key.
func (s *SyncMap[K, V]) Store(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
}

// Load returns the value for a key.
func (s *SyncMap[K, V]) Load(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[k]
	return v, ok
}

// Snapshot returns a copy of the map contents.
func (s *SyncMap[K, V]) Snapshot() map[K]V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[K]V, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}
