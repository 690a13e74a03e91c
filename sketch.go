// sketch.go: count-min frequency sketch used for TinyLFU admission
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"github.com/agilira/scopelfu/internal/util"
)

const (
	// sketchSampleFactor times the capacity is the number of increments
	// after which all counters are halved.
	sketchSampleFactor = 10

	// counterMax is the saturation value of a 4-bit counter
	counterMax = 15
)

// frequencySketch implements a Count-Min Sketch with 4-bit counters
// for estimating access frequency.
//
// The sketch is only touched by the maintenance pass, which is serialized by
// the cache, so plain loads and stores are sufficient.
type frequencySketch struct {
	// table stores 4-bit counters packed into uint64 values
	// Each uint64 holds 16 counters (64 bits / 4 bits per counter)
	table []uint64

	// tableMask is used for fast modulo operation (table size must be power of 2)
	tableMask uint64

	// seeds for the four row hash functions
	seeds [4]uint64

	// additions counts increments since the last reset
	additions int

	// sampleSize is the number of additions that triggers aging
	sampleSize int
}

// newFrequencySketch creates a frequency sketch sized for capacity entries.
func newFrequencySketch(capacity int) *frequencySketch {
	s := &frequencySketch{
		seeds: [4]uint64{
			0x9e3779b97f4a7c15, // Golden ratio hash seeds
			0xbf58476d1ce4e5b9,
			0x94d049bb133111eb,
			0xbf58476d1ce4e5b7,
		},
	}
	s.ensureCapacity(capacity)
	return s
}

// ensureCapacity resizes the table when capacity grows. Counts are discarded
// on resize.
func (s *frequencySketch) ensureCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	tableSize := util.NextPow2(uint64(capacity)) // #nosec G115 - capacity is positive
	if tableSize < 8 {
		tableSize = 8
	}
	s.sampleSize = sketchSampleFactor * capacity
	if uint64(len(s.table)) >= tableSize {
		return
	}
	s.table = make([]uint64, tableSize)
	s.tableMask = tableSize - 1
	s.additions = 0
}

// resetSampleSize returns the number of increments between two agings.
func (s *frequencySketch) resetSampleSize() int {
	return s.sampleSize
}

// increment increments the frequency counters for the given key hash.
// Counters saturate at 15. After sampleSize increments all counters are halved.
func (s *frequencySketch) increment(keyHash uint64) {
	added := false
	for i := 0; i < 4; i++ {
		pos, shift := s.indexOf(keyHash, i)
		if s.incrementAt(pos, shift) {
			added = true
		}
	}

	if added {
		s.additions++
		if s.additions >= s.sampleSize {
			s.reset()
		}
	}
}

// incrementAt increments one 4-bit counter, reporting false on saturation.
func (s *frequencySketch) incrementAt(pos, shift uint64) bool {
	word := s.table[pos]
	counter := (word >> shift) & 0xF
	if counter >= counterMax {
		return false
	}
	s.table[pos] = word + (1 << shift)
	return true
}

// frequency returns the estimated frequency for the given key hash:
// the minimum of the 4 rows.
func (s *frequencySketch) frequency(keyHash uint64) uint8 {
	freq := uint64(counterMax)
	for i := 0; i < 4; i++ {
		pos, shift := s.indexOf(keyHash, i)
		if c := (s.table[pos] >> shift) & 0xF; c < freq {
			freq = c
		}
	}
	return uint8(freq) // #nosec G115 - bounded by counterMax
}

// reset performs aging by halving all counters.
func (s *frequencySketch) reset() {
	const halfMask = 0x7777777777777777 // clears the bit shifted in from the next counter
	for i := range s.table {
		s.table[i] = (s.table[i] >> 1) & halfMask
	}
	s.additions /= 2
}

// indexOf returns the table word and bit offset of the counter for row i.
func (s *frequencySketch) indexOf(keyHash uint64, i int) (pos, shift uint64) {
	h := (keyHash + s.seeds[i]) * s.seeds[i]
	h ^= h >> 32
	pos = h & s.tableMask
	shift = ((keyHash >> (uint(i) * 4)) & 0xF) * 4 // #nosec G115 - i is 0-3
	return pos, shift
}
