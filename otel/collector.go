// collector.go: OpenTelemetry MetricsCollector for scopelfu
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"
	"errors"

	"github.com/agilira/scopelfu"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMeterName is the meter used when no WithMeterName option is given.
const DefaultMeterName = "github.com/agilira/scopelfu"

// ErrNilMeterProvider is returned when no MeterProvider is supplied.
var ErrNilMeterProvider = errors.New("meter provider cannot be nil")

// Collector implements scopelfu.MetricsCollector using OpenTelemetry.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
// The underlying OTEL instruments are thread-safe and lock-free.
type Collector struct {
	getLatency    metric.Int64Histogram
	setLatency    metric.Int64Histogram
	deleteLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	sets          metric.Int64Counter
	deletes       metric.Int64Counter
	evictions     metric.Int64Counter

	meter metric.Meter
	attrs metric.MeasurementOption
}

// Options for configuring Collector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: DefaultMeterName
	MeterName string

	// CacheName is attached to every measurement as the "cache" attribute.
	// Default: empty (no attribute)
	CacheName string
}

// Option is a functional option for configuring Collector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// WithCacheName tags every measurement with the given cache name, which
// separates several caches sharing one meter.
func WithCacheName(name string) Option {
	return func(o *Options) {
		o.CacheName = name
	}
}

// NewCollector creates an OpenTelemetry metrics collector.
//
// Instruments:
//   - scopelfu_get_latency_ns, scopelfu_set_latency_ns, scopelfu_delete_latency_ns: histograms
//   - scopelfu_hits_total, scopelfu_misses_total: read outcomes
//   - scopelfu_sets_total, scopelfu_deletes_total: writes
//   - scopelfu_evictions_total: entries evicted by the policy
//
// Returns ErrNilMeterProvider if provider is nil.
func NewCollector(provider metric.MeterProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, ErrNilMeterProvider
	}

	options := Options{MeterName: DefaultMeterName}
	for _, opt := range opts {
		opt(&options)
	}

	var set attribute.Set
	if options.CacheName != "" {
		set = attribute.NewSet(attribute.String("cache", options.CacheName))
	}

	c := &Collector{
		meter: provider.Meter(options.MeterName),
		attrs: metric.WithAttributeSet(set),
	}

	var err error
	histogram := func(name, desc string) metric.Int64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Int64Histogram
		h, err = c.meter.Int64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ns"))
		return h
	}
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var ctr metric.Int64Counter
		ctr, err = c.meter.Int64Counter(name, metric.WithDescription(desc))
		return ctr
	}

	c.getLatency = histogram("scopelfu_get_latency_ns", "Latency of lookups in nanoseconds")
	c.setLatency = histogram("scopelfu_set_latency_ns", "Latency of inserts and updates in nanoseconds")
	c.deleteLatency = histogram("scopelfu_delete_latency_ns", "Latency of removals in nanoseconds")
	c.hits = counter("scopelfu_hits_total", "Total number of cache hits")
	c.misses = counter("scopelfu_misses_total", "Total number of cache misses")
	c.sets = counter("scopelfu_sets_total", "Total number of inserts and updates")
	c.deletes = counter("scopelfu_deletes_total", "Total number of explicit removals")
	c.evictions = counter("scopelfu_evictions_total", "Total number of policy evictions")
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RecordGet records a lookup latency and its hit or miss.
func (c *Collector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs, c.attrs)
	if hit {
		c.hits.Add(ctx, 1, c.attrs)
	} else {
		c.misses.Add(ctx, 1, c.attrs)
	}
}

// RecordSet records an insert or update.
func (c *Collector) RecordSet(latencyNs int64) {
	ctx := context.Background()
	c.setLatency.Record(ctx, latencyNs, c.attrs)
	c.sets.Add(ctx, 1, c.attrs)
}

// RecordDelete records an explicit removal.
func (c *Collector) RecordDelete(latencyNs int64) {
	ctx := context.Background()
	c.deleteLatency.Record(ctx, latencyNs, c.attrs)
	c.deletes.Add(ctx, 1, c.attrs)
}

// RecordEviction records a policy eviction.
func (c *Collector) RecordEviction() {
	c.evictions.Add(context.Background(), 1, c.attrs)
}

// MetricsSource is the part of a cache that ObserveCache reads.
type MetricsSource interface {
	Metrics() (scopelfu.CacheMetrics, bool)
}

// ObserveCache registers asynchronous gauges for the size, capacity and hit
// ratio of cache. They are read on every collection while the returned
// registration is not unregistered. A cache with metrics disabled reports
// nothing.
func (c *Collector) ObserveCache(cache MetricsSource) (metric.Registration, error) {
	size, err := c.meter.Int64ObservableGauge("scopelfu_size_entries",
		metric.WithDescription("Number of resident entries"))
	if err != nil {
		return nil, err
	}
	capacity, err := c.meter.Int64ObservableGauge("scopelfu_capacity_entries",
		metric.WithDescription("Maximum number of entries"))
	if err != nil {
		return nil, err
	}
	ratio, err := c.meter.Float64ObservableGauge("scopelfu_hit_ratio",
		metric.WithDescription("Hits divided by reads since creation"))
	if err != nil {
		return nil, err
	}

	return c.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		m, enabled := cache.Metrics()
		if !enabled {
			return nil
		}
		o.ObserveInt64(size, int64(m.Size), c.attrs)
		o.ObserveInt64(capacity, int64(m.Capacity), c.attrs)
		o.ObserveFloat64(ratio, m.HitRatio(), c.attrs)
		return nil
	}, size, capacity, ratio)
}

var _ scopelfu.MetricsCollector = (*Collector)(nil)
