// buffer_test.go: tests for read and write ring buffers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"sync"
	"testing"
)

func TestRingBuffer_CapacityRoundsUp(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{1, 1},
		{3, 4},
		{16, 16},
		{100, 128},
	}
	for _, tt := range tests {
		if got := newRingBuffer[int](tt.requested).capacity(); got != tt.want {
			t.Errorf("newRingBuffer(%d).capacity() = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestRingBuffer_FullAndDrain(t *testing.T) {
	b := newRingBuffer[int](4)
	items := []int{1, 2, 3, 4, 5}

	for i := 0; i < 4; i++ {
		if status := b.tryAdd(&items[i]); status != bufferSuccess {
			t.Fatalf("tryAdd(%d) = %d, want success", items[i], status)
		}
	}
	if status := b.tryAdd(&items[4]); status != bufferFull {
		t.Fatalf("tryAdd on a full buffer = %d, want full", status)
	}
	if b.size() != 4 {
		t.Errorf("size() = %d, want 4", b.size())
	}

	var got []int
	if n := b.drainTo(func(v *int) { got = append(got, *v) }); n != 4 {
		t.Errorf("drainTo = %d, want 4", n)
	}
	for i, v := range got {
		if v != items[i] {
			t.Errorf("drained %v, want arrival order %v", got, items[:4])
			break
		}
	}
	if b.size() != 0 {
		t.Errorf("size() after drain = %d, want 0", b.size())
	}

	// slots are reusable after a drain
	if status := b.tryAdd(&items[4]); status != bufferSuccess {
		t.Errorf("tryAdd after drain = %d, want success", status)
	}
}

func TestRingBuffer_ConcurrentProducers(t *testing.T) {
	b := newRingBuffer[int](1024)
	const producers, perProducer = 8, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				v := p*perProducer + i
				for b.tryAdd(&v) == bufferContended {
				}
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	b.drainTo(func(v *int) { seen[*v] = true })
	if len(seen) != producers*perProducer {
		t.Errorf("drained %d distinct items, want %d", len(seen), producers*perProducer)
	}
}

func TestStripedBuffer_Layout(t *testing.T) {
	sb := newStripedBuffer[int](3, 16)
	if sb.stripeCount() != 4 {
		t.Errorf("stripeCount() = %d, want 4", sb.stripeCount())
	}
	if sb.capacity() != 64 {
		t.Errorf("capacity() = %d, want 64", sb.capacity())
	}
}

func TestStripedBuffer_ReportsFull(t *testing.T) {
	sb := newStripedBuffer[int](1, 8)
	v := 1

	for i := 0; i < 8; i++ {
		if status := sb.tryAdd(&v); status != bufferSuccess {
			t.Fatalf("tryAdd #%d = %d, want success", i, status)
		}
	}
	if status := sb.tryAdd(&v); status != bufferFull {
		t.Errorf("tryAdd on a full stripe = %d, want full", status)
	}
	if n := sb.drainTo(func(*int) {}); n != 8 {
		t.Errorf("drainTo = %d, want 8", n)
	}
}

func BenchmarkStripedBuffer_TryAdd(b *testing.B) {
	sb := newStripedBuffer[int](8, 128)
	v := 1
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = sb.tryAdd(&v)
		}
	})
}
