// store_test.go: tests for the concurrent key index
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"sync"
	"testing"
)

func TestStore_LoadOrStore(t *testing.T) {
	s := newStore[string, int](16)
	a := newNode("k", 1, 1)
	b := newNode("k", 1, 2)

	if got, loaded := s.loadOrStore(a); loaded || got != a {
		t.Fatal("first loadOrStore must store the node")
	}
	if got, loaded := s.loadOrStore(b); !loaded || got != a {
		t.Fatal("second loadOrStore must return the existing node")
	}
	if n, ok := s.load("k"); !ok || n != a {
		t.Error("load must return the stored node")
	}
	if s.size() != 1 {
		t.Errorf("size() = %d, want 1", s.size())
	}
}

func TestStore_RemoveIfSame(t *testing.T) {
	s := newStore[string, int](16)
	a := newNode("k", 1, 1)
	b := newNode("k", 1, 2)
	s.loadOrStore(a)

	if s.removeIfSame(b) {
		t.Error("removeIfSame must not remove a different node")
	}
	if _, ok := s.load("k"); !ok {
		t.Fatal("key must still be mapped")
	}
	if !s.removeIfSame(a) {
		t.Error("removeIfSame must remove the mapped node")
	}
	if s.removeIfSame(a) {
		t.Error("removeIfSame on a missing key must report false")
	}
	if s.size() != 0 {
		t.Errorf("size() = %d, want 0", s.size())
	}
}

func TestStore_LoadAndDeleteAndRange(t *testing.T) {
	s := newStore[int, int](16)
	for i := 0; i < 10; i++ {
		s.loadOrStore(newNode(i, uint64(i), i)) // #nosec G115 - test keys are small
	}

	if n, ok := s.loadAndDelete(3); !ok || n.key != 3 {
		t.Fatal("loadAndDelete(3) failed")
	}
	if _, ok := s.loadAndDelete(3); ok {
		t.Error("loadAndDelete on a missing key must fail")
	}

	seen := 0
	s.rangeNodes(func(n *node[int, int]) bool {
		seen++
		return seen < 5
	})
	if seen != 5 {
		t.Errorf("rangeNodes visited %d nodes, want to stop at 5", seen)
	}
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s := newStore[int, int](64)
	var wg sync.WaitGroup
	winners := make([]*node[int, int], 8)

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			n, _ := s.loadOrStore(newNode(1, 1, g))
			winners[g] = n
		}(g)
	}
	wg.Wait()

	for _, w := range winners {
		if w != winners[0] {
			t.Fatal("concurrent loadOrStore returned different winners")
		}
	}
}
