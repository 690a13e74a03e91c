// partition.go: segment capacities and the adaptive window hill climber
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

// hillClimberHysteresis is the minimum change in sampled hit rate that
// moves capacity between the window and the protected segment.
const hillClimberHysteresis = 0.05

// partition splits the total capacity between the three segments.
//
// The window starts at DefaultWindowRatio of capacity and the protected
// segment at DefaultProtectedRatio of the remaining main space; probation
// takes the rest. Each segment keeps at least one slot whenever capacity
// allows it.
type partition struct {
	capacity  int
	window    int
	protected int

	previousHitRate float64
	previousHits    uint64
	previousMisses  uint64
}

func newPartition(capacity int) partition {
	p := partition{}
	p.resize(capacity)
	return p
}

// resize recomputes the initial proportions for a new capacity.
func (p *partition) resize(capacity int) {
	p.capacity = capacity

	p.window = int(float64(capacity) * DefaultWindowRatio)
	if p.window < 1 {
		p.window = 1
	}
	if p.window > capacity {
		p.window = capacity
	}

	main := capacity - p.window
	p.protected = int(float64(main) * DefaultProtectedRatio)
	if main >= 2 {
		if p.protected < 1 {
			p.protected = 1
		}
		if p.protected > main-1 {
			p.protected = main - 1
		}
	} else {
		p.protected = 0
	}
}

// probation returns the capacity left for the probation segment.
func (p *partition) probation() int {
	return p.capacity - p.window - p.protected
}

// optimize runs one hill climbing step once sampleThreshold reads have been
// observed since the previous step. A falling hit rate grows the window by
// one slot taken from protected; a rising hit rate does the reverse.
// Returns the change applied to the window capacity.
func (p *partition) optimize(hits, misses uint64, sampleThreshold int) int {
	sampleHits := hits - p.previousHits
	sampleMisses := misses - p.previousMisses
	sampleCount := sampleHits + sampleMisses
	if sampleCount < uint64(sampleThreshold) { // #nosec G115 - threshold is positive
		return 0
	}

	hitRate := float64(sampleHits) / float64(sampleCount)
	delta := hitRate - p.previousHitRate

	step := 0
	switch {
	case delta < -hillClimberHysteresis && p.protected > 1:
		p.window++
		p.protected--
		step = 1
	case delta > hillClimberHysteresis && p.window > 1:
		p.window--
		p.protected++
		step = -1
	}

	p.previousHitRate = hitRate
	p.previousHits = hits
	p.previousMisses = misses
	return step
}
