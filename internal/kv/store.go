// Package kv implements the KV resolver (component C9): a mutable
// key/value store addressed entirely through DNS query names, grounded
// on original_source/src/kv/mod.rs's KvStore.
//
//	dig {key} @host          -> TXT record with the stored value
//	dig {key}.{value} @host  -> stores value under key, then returns it
package kv

import "sync"

// Store is a mutex-guarded key/value map. spec.md's Shared Resources
// section requires explicit synchronization here because, unlike the
// original's single-threaded-per-connection Rust ownership, this
// server's worker pool (internal/worker) may run concurrent lookups and
// writes against the same store.
type Store struct {
	mu   sync.Mutex
	data map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the value stored under key, if any.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Put stores value under key and returns it, matching query_put's
// insert-then-reread behavior.
func (s *Store) Put(key, value string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return value
}
