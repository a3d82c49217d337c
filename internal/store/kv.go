// Package store provides the in-memory, chat-keyed stores shared by the
// conversation engine and the panel gateway.
package store

import (
	"sort"

	"github.com/patrickmn/go-cache"
)

// Entry is a key/value pair returned by List
type Entry[K ~string, V any] struct {
	Key   K
	Value V
}

// KV is a concurrent key/value store. Writes are last-writer-wins, readers
// never block each other. Entries live for the process lifetime.
type KV[K ~string, V any] struct {
	items *cache.Cache
}

// NewKV creates an empty store.
func NewKV[K ~string, V any]() *KV[K, V] {
	return &KV[K, V]{
		items: cache.New(cache.NoExpiration, 0),
	}
}

// Set creates or overwrites the value for key.
func (s *KV[K, V]) Set(key K, value V) {
	s.items.Set(string(key), value, cache.NoExpiration)
}

// Get returns the current value for key.
func (s *KV[K, V]) Get(key K) (V, bool) {
	var zero V
	raw, ok := s.items.Get(string(key))
	if !ok {
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return value, true
}

// Has reports whether key is present.
func (s *KV[K, V]) Has(key K) bool {
	_, ok := s.items.Get(string(key))
	return ok
}

// Remove deletes key if present.
func (s *KV[K, V]) Remove(key K) {
	s.items.Delete(string(key))
}

// Len returns the number of stored entries.
func (s *KV[K, V]) Len() int {
	return s.items.ItemCount()
}

// List returns a snapshot of all entries ordered by key.
func (s *KV[K, V]) List() []Entry[K, V] {
	items := s.items.Items()
	out := make([]Entry[K, V], 0, len(items))
	for k, item := range items {
		value, ok := item.Object.(V)
		if !ok {
			continue
		}
		out = append(out, Entry[K, V]{Key: K(k), Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
