// prom.go: Prometheus MetricsCollector for scopelfu
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package prom exports scopelfu cache operations as Prometheus metrics.
package prom

import (
	"github.com/agilira/scopelfu"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements scopelfu.MetricsCollector with Prometheus counters,
// latency histograms and size gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	sets     prometheus.Counter
	deletes  prometheus.Counter
	evicts   prometheus.Counter
	latency  *prometheus.HistogramVec
	sizeEnt  prometheus.Gauge
	capacity prometheus.Gauge

	getLatency    prometheus.Observer
	setLatency    prometheus.Observer
	deleteLatency prometheus.Observer
}

// latencyBuckets spans 50ns to ~50us, where cache operations live.
var latencyBuckets = prometheus.ExponentialBuckets(50, 2, 11)

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}

	a := &Adapter{
		hits:    counter("hits_total", "Cache hits"),
		misses:  counter("misses_total", "Cache misses"),
		sets:    counter("sets_total", "Values inserted or replaced"),
		deletes: counter("deletes_total", "Explicit removals"),
		evicts:  counter("evictions_total", "Entries evicted by the policy"),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "operation_latency_ns",
			Help:        "Cache operation latency in nanoseconds",
			ConstLabels: constLabels,
			Buckets:     latencyBuckets,
		}, []string{"op"}),
		sizeEnt:  gauge("size_entries", "Number of resident entries"),
		capacity: gauge("capacity_entries", "Maximum number of entries"),
	}
	a.getLatency = a.latency.WithLabelValues("get")
	a.setLatency = a.latency.WithLabelValues("set")
	a.deleteLatency = a.latency.WithLabelValues("delete")

	reg.MustRegister(a.hits, a.misses, a.sets, a.deletes, a.evicts, a.latency, a.sizeEnt, a.capacity)
	return a
}

// RecordGet counts a hit or a miss and observes its latency.
func (a *Adapter) RecordGet(latencyNs int64, hit bool) {
	if hit {
		a.hits.Inc()
	} else {
		a.misses.Inc()
	}
	a.getLatency.Observe(float64(latencyNs))
}

// RecordSet counts an insert or update and observes its latency.
func (a *Adapter) RecordSet(latencyNs int64) {
	a.sets.Inc()
	a.setLatency.Observe(float64(latencyNs))
}

// RecordDelete counts an explicit removal and observes its latency.
func (a *Adapter) RecordDelete(latencyNs int64) {
	a.deletes.Inc()
	a.deleteLatency.Observe(float64(latencyNs))
}

// RecordEviction increments the eviction counter.
func (a *Adapter) RecordEviction() { a.evicts.Inc() }

// Observe updates the size gauges from a metrics read-out.
func (a *Adapter) Observe(m scopelfu.CacheMetrics) {
	a.sizeEnt.Set(float64(m.Size))
	a.capacity.Set(float64(m.Capacity))
}

// Compile-time check: ensure Adapter implements scopelfu.MetricsCollector.
var _ scopelfu.MetricsCollector = (*Adapter)(nil)
