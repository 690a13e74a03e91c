// stats.go: bool64/stats MetricsCollector for scopelfu
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package stats reports scopelfu cache operations to a bool64/stats Tracker.
package stats

import (
	"context"

	"github.com/agilira/scopelfu"
	"github.com/bool64/stats"
)

// Metric names reported to the tracker.
const (
	MetricHit       = "cache_hit"
	MetricMiss      = "cache_miss"
	MetricWrite     = "cache_write"
	MetricDelete    = "cache_delete"
	MetricEvict     = "cache_evict"
	MetricLatencyNs = "cache_latency_ns"
)

// Collector implements scopelfu.MetricsCollector on a stats.Tracker.
// Every metric carries the "name" label with the configured cache name;
// latencies additionally carry "op".
type Collector struct {
	tracker stats.Tracker
	name    string
}

// New returns a collector reporting to tracker. A nil tracker is replaced
// with stats.NoOp.
func New(tracker stats.Tracker, name string) *Collector {
	if tracker == nil {
		tracker = stats.NoOp{}
	}
	return &Collector{tracker: tracker, name: name}
}

// RecordGet tracks a hit or a miss with its latency.
func (c *Collector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	if hit {
		c.tracker.Add(ctx, MetricHit, 1, "name", c.name)
	} else {
		c.tracker.Add(ctx, MetricMiss, 1, "name", c.name)
	}
	c.tracker.Add(ctx, MetricLatencyNs, float64(latencyNs), "name", c.name, "op", "get")
}

// RecordSet tracks an insert or update with its latency.
func (c *Collector) RecordSet(latencyNs int64) {
	ctx := context.Background()
	c.tracker.Add(ctx, MetricWrite, 1, "name", c.name)
	c.tracker.Add(ctx, MetricLatencyNs, float64(latencyNs), "name", c.name, "op", "set")
}

// RecordDelete tracks an explicit removal with its latency.
func (c *Collector) RecordDelete(latencyNs int64) {
	ctx := context.Background()
	c.tracker.Add(ctx, MetricDelete, 1, "name", c.name)
	c.tracker.Add(ctx, MetricLatencyNs, float64(latencyNs), "name", c.name, "op", "delete")
}

// RecordEviction tracks an entry evicted by the policy.
func (c *Collector) RecordEviction() {
	c.tracker.Add(context.Background(), MetricEvict, 1, "name", c.name)
}

var _ scopelfu.MetricsCollector = (*Collector)(nil)
