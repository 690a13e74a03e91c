// list_test.go: tests for segment lists and nodes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"slices"
	"testing"
)

// keys returns the keys from LRU to MRU.
func (l *segmentList[K, V]) keys() []K {
	out := make([]K, 0, l.len)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

func linkedNodes(l *segmentList[int, int], keys ...int) []*node[int, int] {
	nodes := make([]*node[int, int], len(keys))
	for i, k := range keys {
		nodes[i] = newNode(k, uint64(k), k) // #nosec G115 - test keys are small
		l.pushBack(nodes[i])
	}
	return nodes
}

func TestSegmentList_PushAndRemove(t *testing.T) {
	l := newSegmentList[int, int](segmentProbation)
	nodes := linkedNodes(l, 1, 2, 3)

	if got := l.keys(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("keys() = %v, want [1 2 3]", got)
	}
	if nodes[1].segment != segmentProbation {
		t.Error("pushBack must tag the node with the list segment")
	}

	l.remove(nodes[1])
	if got := l.keys(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("keys() after remove = %v, want [1 3]", got)
	}
	if nodes[1].segment != segmentNone || nodes[1].prev != nil || nodes[1].next != nil {
		t.Error("removed node must be fully unlinked")
	}
	if l.length() != 2 {
		t.Errorf("length() = %d, want 2", l.length())
	}
}

func TestSegmentList_MoveToBack(t *testing.T) {
	l := newSegmentList[int, int](segmentWindow)
	nodes := linkedNodes(l, 1, 2, 3)

	l.moveToBack(nodes[0])
	if got := l.keys(); !slices.Equal(got, []int{2, 3, 1}) {
		t.Errorf("keys() = %v, want [2 3 1]", got)
	}

	l.moveToBack(nodes[0])
	if got := l.keys(); !slices.Equal(got, []int{2, 3, 1}) {
		t.Errorf("moving the tail must be a no-op, got %v", got)
	}
}

func TestSegmentList_PopFront(t *testing.T) {
	l := newSegmentList[int, int](segmentProtected)
	nodes := linkedNodes(l, 1, 2, 3)

	if n := l.popFront(); n != nodes[0] {
		t.Errorf("popFront() = %v, want key 1", n.key)
	}
	if l.front() != nodes[1] {
		t.Error("front() must be key 2 after popFront")
	}

	l.popFront()
	l.popFront()
	if l.length() != 0 || l.front() != nil || l.popFront() != nil {
		t.Error("popping every node must leave an empty list")
	}
}

func TestNode_ValueOwnership(t *testing.T) {
	n := newNode("k", 1, 10)

	if v, ok := n.load(); !ok || v != 10 {
		t.Fatalf("load() = %d, %v, want 10, true", v, ok)
	}
	if old, ok := n.replace(20); !ok || old != 10 {
		t.Fatalf("replace() = %d, %v, want 10, true", old, ok)
	}

	v, ok := n.take()
	if !ok || v != 20 {
		t.Fatalf("take() = %d, %v, want 20, true", v, ok)
	}
	if _, ok := n.take(); ok {
		t.Error("only the first take may own the value")
	}
	if _, ok := n.replace(30); ok {
		t.Error("replace must fail on a retired node")
	}
	if _, ok := n.load(); ok {
		t.Error("load must fail on a retired node")
	}
}

func TestSegment_String(t *testing.T) {
	tests := map[segment]string{
		segmentNone:      "none",
		segmentWindow:    "window",
		segmentProbation: "probation",
		segmentProtected: "protected",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
