// partition_test.go: tests for segment sizing and the hill climber
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import "testing"

func TestNewPartition(t *testing.T) {
	tests := []struct {
		capacity  int
		window    int
		protected int
		probation int
	}{
		{1, 1, 0, 0},
		{2, 1, 0, 1},
		{3, 1, 1, 1},
		{20, 1, 15, 4},
		{100, 1, 79, 20},
		{1000, 10, 792, 198},
	}
	for _, tt := range tests {
		p := newPartition(tt.capacity)
		if p.window != tt.window || p.protected != tt.protected || p.probation() != tt.probation {
			t.Errorf("newPartition(%d) = %d/%d/%d, want %d/%d/%d", tt.capacity,
				p.window, p.protected, p.probation(), tt.window, tt.protected, tt.probation)
		}
		if p.window+p.protected+p.probation() != tt.capacity {
			t.Errorf("newPartition(%d) segments do not add up to capacity", tt.capacity)
		}
	}
}

func TestPartition_OptimizeWaitsForSample(t *testing.T) {
	p := newPartition(100)

	if step := p.optimize(10, 10, 100); step != 0 {
		t.Errorf("step = %d before a full sample, want 0", step)
	}
	if p.previousHits != 0 || p.previousMisses != 0 {
		t.Error("an incomplete sample must not be recorded")
	}
}

func TestPartition_OptimizeClimbs(t *testing.T) {
	p := newPartition(100)

	// first sample: rising hit rate, but the window is already minimal
	if step := p.optimize(80, 20, 100); step != 0 {
		t.Fatalf("step = %d, want 0 with a minimal window", step)
	}

	// falling hit rate grows the window
	if step := p.optimize(90, 110, 100); step != 1 {
		t.Fatalf("step = %d, want 1", step)
	}
	if p.window != 2 || p.protected != 78 {
		t.Errorf("window/protected = %d/%d, want 2/78", p.window, p.protected)
	}

	// small change stays inside the hysteresis band
	if step := p.optimize(101, 199, 100); step != 0 {
		t.Errorf("step = %d, want 0 within hysteresis", step)
	}

	// rising hit rate shrinks the window again
	if step := p.optimize(201, 199, 100); step != -1 {
		t.Fatalf("step = %d, want -1", step)
	}
	if p.window != 1 || p.protected != 79 {
		t.Errorf("window/protected = %d/%d, want 1/79", p.window, p.protected)
	}
	if p.window+p.protected+p.probation() != p.capacity {
		t.Error("hill climbing must preserve total capacity")
	}
}

func TestPartition_Resize(t *testing.T) {
	p := newPartition(20)
	p.optimize(10, 0, 1)
	p.resize(1000)

	if p.capacity != 1000 || p.window != 10 || p.protected != 792 {
		t.Errorf("resize(1000) = %d/%d/%d, want 1000/10/792", p.capacity, p.window, p.protected)
	}
}
