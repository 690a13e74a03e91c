// buffer.go: bounded ring buffers recording read and write events
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/agilira/scopelfu/internal/util"
)

// bufferStatus is the outcome of adding to a ring buffer.
type bufferStatus int8

const (
	bufferSuccess bufferStatus = iota
	bufferFull
	bufferContended
)

// stripeProbes is how many stripes a reader tries before giving up on contention.
const stripeProbes = 3

// ringBuffer is a bounded multi-producer single-consumer ring.
//
// Producers claim a slot by advancing tail with a CAS and then publish the
// item into it. The single consumer (the maintenance pass) walks from head
// until it meets a slot that is not yet published.
type ringBuffer[T any] struct {
	head  util.PaddedAtomicUint64
	tail  util.PaddedAtomicUint64
	mask  uint64
	slots []atomic.Pointer[T]
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	size := util.NextPow2(uint64(capacity)) // #nosec G115 - capacity is validated positive
	return &ringBuffer[T]{
		mask:  size - 1,
		slots: make([]atomic.Pointer[T], size),
	}
}

// capacity returns the number of slots.
func (b *ringBuffer[T]) capacity() int {
	return len(b.slots)
}

// tryAdd publishes item without blocking.
func (b *ringBuffer[T]) tryAdd(item *T) bufferStatus {
	head := b.head.Load()
	tail := b.tail.Load()
	if tail-head >= uint64(len(b.slots)) {
		return bufferFull
	}
	if !b.tail.CompareAndSwap(tail, tail+1) {
		return bufferContended
	}
	b.slots[tail&b.mask].Store(item)
	return bufferSuccess
}

// drainTo hands every published item to fn in arrival order and returns how
// many were consumed. Must only be called by the maintenance pass.
func (b *ringBuffer[T]) drainTo(fn func(*T)) int {
	head := b.head.Load()
	tail := b.tail.Load()
	n := 0
	for head != tail {
		slot := &b.slots[head&b.mask]
		item := slot.Load()
		if item == nil {
			// claimed but not yet published; picked up by the next drain
			break
		}
		slot.Store(nil)
		fn(item)
		head++
		n++
	}
	b.head.Store(head)
	return n
}

// size returns an estimate of the number of pending items.
func (b *ringBuffer[T]) size() int {
	return int(b.tail.Load() - b.head.Load()) // #nosec G115 - bounded by capacity
}

// stripedBuffer spreads read events over several ring buffers to reduce
// contention between concurrent readers.
type stripedBuffer[T any] struct {
	stripes []*ringBuffer[T]
	mask    uint32
}

func newStripedBuffer[T any](stripes, capacity int) *stripedBuffer[T] {
	n := util.NextPow2(uint64(stripes)) // #nosec G115 - stripes is validated positive
	sb := &stripedBuffer[T]{
		stripes: make([]*ringBuffer[T], n),
		mask:    uint32(n - 1), // #nosec G115 - bounded stripe count
	}
	for i := range sb.stripes {
		sb.stripes[i] = newRingBuffer[T](capacity)
	}
	return sb
}

// tryAdd records item in a randomly probed stripe. bufferFull is returned as
// soon as a full stripe is met; contention moves on to the next stripe.
func (sb *stripedBuffer[T]) tryAdd(item *T) bufferStatus {
	idx := rand.Uint32()
	status := bufferContended
	for i := 0; i < stripeProbes; i++ {
		status = sb.stripes[idx&sb.mask].tryAdd(item)
		if status != bufferContended {
			return status
		}
		idx++
	}
	return status
}

// drainTo drains every stripe in order; items keep arrival order per stripe.
func (sb *stripedBuffer[T]) drainTo(fn func(*T)) int {
	n := 0
	for _, s := range sb.stripes {
		n += s.drainTo(fn)
	}
	return n
}

// stripeCount returns the number of stripes.
func (sb *stripedBuffer[T]) stripeCount() int {
	return len(sb.stripes)
}

// capacity returns the total number of slots across stripes.
func (sb *stripedBuffer[T]) capacity() int {
	return len(sb.stripes) * sb.stripes[0].capacity()
}
