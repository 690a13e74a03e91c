// util_test.go: tests for internal helpers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package util

import (
	"strconv"
	"testing"
)

func TestNextPow2(t *testing.T) {
	tests := []struct {
		input    uint64
		expected uint64
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{16, 16},
		{17, 32},
		{20, 32},
		{1000, 1024},
		{1<<63 + 1, 1 << 63},
	}

	for _, tt := range tests {
		t.Run(strconv.FormatUint(tt.input, 10), func(t *testing.T) {
			if got := NextPow2(tt.input); got != tt.expected {
				t.Errorf("NextPow2(%d) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, x := range []uint64{1, 2, 64, 128, 1 << 40} {
		if !IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = false", x)
		}
	}
	for _, x := range []uint64{0, 3, 20, 129} {
		if IsPowerOfTwo(x) {
			t.Errorf("IsPowerOfTwo(%d) = true", x)
		}
	}
}

type point struct{ x, y int }

type named string

func (n named) String() string { return "n:" + string(n) }

type ref struct{ name string }

func (r *ref) String() string { return r.name }

func TestHash_Deterministic(t *testing.T) {
	if Hash("alpha") != Hash("alpha") {
		t.Error("string hash is not deterministic")
	}
	if Hash(42) != Hash(42) {
		t.Error("int hash is not deterministic")
	}
	if Hash(point{1, 2}) != Hash(point{1, 2}) {
		t.Error("struct hash is not deterministic")
	}
	if Hash(named("a")) != Hash(named("a")) {
		t.Error("named string hash is not deterministic")
	}
}

func TestHash_StringerKeysHashByIdentity(t *testing.T) {
	var nilRef *ref
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("hashing a nil pointer key panicked: %v", r)
		}
	}()
	_ = Hash(nilRef)

	a, b := &ref{name: "same"}, &ref{name: "same"}
	if Hash(a) == Hash(b) {
		t.Error("distinct keys with equal String() must not share a hash")
	}
	if Hash(named("x")) == Hash(named("y")) {
		t.Error("distinct named strings must hash differently")
	}
}

func TestHash_Spread(t *testing.T) {
	seen := make(map[uint64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[Hash(i)] = struct{}{}
	}
	if len(seen) != 1000 {
		t.Errorf("expected 1000 distinct hashes, got %d", len(seen))
	}
	if Hash(1) == Hash(int64(2)) {
		t.Error("distinct integers should not collide")
	}
}
