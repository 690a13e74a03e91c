// list.go: intrusive LRU lists backing the window, probation and protected segments
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

// segmentList is an intrusive doubly linked list of nodes.
// Front is the least recently used end, back the most recently used.
// Only the maintenance pass touches it.
type segmentList[K comparable, V any] struct {
	head *node[K, V]
	tail *node[K, V]
	len  int
	tag  segment
}

func newSegmentList[K comparable, V any](tag segment) *segmentList[K, V] {
	return &segmentList[K, V]{tag: tag}
}

// front returns the LRU node or nil.
func (l *segmentList[K, V]) front() *node[K, V] { return l.head }

// length returns the number of linked nodes.
func (l *segmentList[K, V]) length() int { return l.len }

// pushBack links n at the MRU end and tags it with the list segment.
func (l *segmentList[K, V]) pushBack(n *node[K, V]) {
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	n.segment = l.tag
	l.len++
}

// remove unlinks n. The node keeps its segment tag cleared.
func (l *segmentList[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	n.segment = segmentNone
	l.len--
}

// moveToBack marks n as most recently used.
func (l *segmentList[K, V]) moveToBack(n *node[K, V]) {
	if l.tail == n {
		return
	}
	l.remove(n)
	l.pushBack(n)
}

// popFront unlinks and returns the LRU node, or nil when empty.
func (l *segmentList[K, V]) popFront() *node[K, V] {
	n := l.head
	if n != nil {
		l.remove(n)
	}
	return n
}
