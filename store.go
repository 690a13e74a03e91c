// store.go: concurrent key index over cache nodes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// store maps keys to nodes. Lookups never block; inserts and removes are
// safe concurrently with each other and with maintenance relinking the
// same nodes, since the index and the segment lists are disjoint fields.
type store[K comparable, V any] struct {
	m *xsync.MapOf[K, *node[K, V]]
}

func newStore[K comparable, V any](capacity int) *store[K, V] {
	return &store[K, V]{
		m: xsync.NewMapOf[K, *node[K, V]](xsync.WithPresize(capacity)),
	}
}

// load returns the node mapped to key.
func (s *store[K, V]) load(key K) (*node[K, V], bool) {
	return s.m.Load(key)
}

// loadOrStore maps n unless key is present, returning the node that won.
func (s *store[K, V]) loadOrStore(n *node[K, V]) (*node[K, V], bool) {
	return s.m.LoadOrStore(n.key, n)
}

// loadAndDelete unmaps key and returns the node that was mapped.
func (s *store[K, V]) loadAndDelete(key K) (*node[K, V], bool) {
	return s.m.LoadAndDelete(key)
}

// removeIfSame unmaps n only if key still maps to it.
func (s *store[K, V]) removeIfSame(n *node[K, V]) bool {
	removed := false
	s.m.Compute(n.key, func(old *node[K, V], loaded bool) (*node[K, V], bool) {
		if !loaded {
			return nil, true
		}
		if old != n {
			return old, false
		}
		removed = true
		return nil, true
	})
	return removed
}

// rangeNodes calls fn for each mapped node until fn returns false.
// The view is weakly consistent.
func (s *store[K, V]) rangeNodes(fn func(n *node[K, V]) bool) {
	s.m.Range(func(_ K, n *node[K, V]) bool {
		return fn(n)
	})
}

// size returns the number of mapped keys.
func (s *store[K, V]) size() int {
	return s.m.Size()
}
