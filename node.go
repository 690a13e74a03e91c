// node.go: cache entry shared by the store index and the segment lists
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import "sync/atomic"

// segment tags which list a node currently belongs to.
type segment int8

const (
	segmentNone segment = iota // not yet linked by maintenance
	segmentWindow
	segmentProbation
	segmentProtected
)

func (s segment) String() string {
	switch s {
	case segmentWindow:
		return "window"
	case segmentProbation:
		return "probation"
	case segmentProtected:
		return "protected"
	default:
		return "none"
	}
}

// node is a cache entry. The store owns it; segment lists link it.
//
// value and removed are read and written concurrently by callers. A nil
// value pointer means the entry has been retired.
// prev, next, segment and deleted belong to the maintenance pass.
type node[K comparable, V any] struct {
	key   K
	hash  uint64
	value atomic.Pointer[V]

	// Intrusive list links: front is LRU, back is MRU.
	prev *node[K, V]
	next *node[K, V]

	segment segment

	// removed is set once the node has been unmapped from the store.
	removed atomic.Bool

	// deleted is set by maintenance once the removal has been accounted for
	// (metrics, events, disposal).
	deleted bool
}

func newNode[K comparable, V any](key K, hash uint64, value V) *node[K, V] {
	n := &node[K, V]{key: key, hash: hash}
	n.value.Store(&value)
	return n
}

// load returns the current value. ok is false once the value has been
// taken by eviction or removal.
func (n *node[K, V]) load() (v V, ok bool) {
	if p := n.value.Load(); p != nil {
		return *p, true
	}
	return v, false
}

// replace installs value unless the node has already been emptied, and
// returns the previous value.
func (n *node[K, V]) replace(value V) (old V, ok bool) {
	next := &value
	for {
		p := n.value.Load()
		if p == nil {
			return old, false
		}
		if n.value.CompareAndSwap(p, next) {
			return *p, true
		}
	}
}

// take empties the node and returns its value. Only the first caller gets
// ok == true, which makes it the owner responsible for disposal.
func (n *node[K, V]) take() (v V, ok bool) {
	if p := n.value.Swap(nil); p != nil {
		return *p, true
	}
	return v, false
}
