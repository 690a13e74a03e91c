// interfaces.go: public interfaces for scopelfu
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"context"
	"iter"
	"time"
)

// Cache is the surface consumed by decorators and harnesses.
// All methods must be safe for concurrent use.
type Cache[K comparable, V any] interface {
	// GetOrAdd returns the cached value for key, or constructs it with factory.
	// Concurrent misses on the same key invoke factory at most once.
	GetOrAdd(key K, factory func(K) (V, error)) (V, error)

	// GetOrAddContext is like GetOrAdd but lets waiters give up when ctx is done.
	// The context is passed to the factory.
	GetOrAddContext(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error)

	// TryGet returns the value for key and true if present.
	TryGet(key K) (V, bool)

	// TryRemove removes key and reports whether it was present.
	TryRemove(key K) bool

	// TryUpdate replaces the value of an existing key.
	TryUpdate(key K, value V) bool

	// AddOrUpdate stores value for key, replacing any existing value.
	AddOrUpdate(key K, value V)

	// Trim evicts up to n entries in eviction order.
	Trim(n int)

	// Clear removes and disposes every entry.
	Clear()

	// Count returns the number of entries currently indexed.
	Count() int

	// Keys returns a weakly consistent snapshot of the keys.
	Keys() []K

	// All iterates a weakly consistent view of the entries.
	All() iter.Seq2[K, V]

	// Metrics returns the metrics read-out and whether metrics are enabled.
	Metrics() (CacheMetrics, bool)

	// Policy returns the eviction and expiry policies of the cache.
	Policy() Policy
}

// CacheMetrics provides statistics about cache performance.
type CacheMetrics struct {
	// Hits is the number of reads that found a value
	Hits uint64

	// Misses is the number of reads that found nothing
	Misses uint64

	// Evictions is the number of entries evicted, removed or trimmed
	Evictions uint64

	// Updates is the number of in-place value replacements
	Updates uint64

	// Size is the current number of entries
	Size int

	// Capacity is the maximum number of entries after maintenance
	Capacity int
}

// Total returns hits plus misses.
func (m CacheMetrics) Total() uint64 {
	return m.Hits + m.Misses
}

// HitRatio returns the cache hit ratio in the range 0-1.
// Returns 0.0 if no reads have been recorded yet.
func (m CacheMetrics) HitRatio() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

// EvictionPolicy exposes the size bound of a cache.
type EvictionPolicy interface {
	// Capacity returns the maximum number of entries.
	Capacity() int

	// Trim evicts up to n entries.
	Trim(n int)
}

// TimePolicy exposes time based expiry. The frequency engine has none.
type TimePolicy interface {
	// TimeToLive returns how long an entry lives after it is written.
	TimeToLive() time.Duration

	// TrimExpired removes expired entries.
	TrimExpired()
}

// Policy groups the policies a cache supports. Nil members are absent.
type Policy struct {
	Eviction         EvictionPolicy
	ExpireAfterWrite TimePolicy
}

// HasExpireAfterWrite reports whether the cache expires entries after write.
func (p Policy) HasExpireAfterWrite() bool {
	return p.ExpireAfterWrite != nil
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache operation metrics.
// Implementations can send metrics to Prometheus, OpenTelemetry, bool64/stats
// or other monitoring systems.
//
// Thread-safety:
//   - All methods must be safe for concurrent use
//   - Multiple goroutines will call these methods simultaneously
type MetricsCollector interface {
	// RecordGet records a lookup with its latency and hit/miss result.
	RecordGet(latencyNs int64, hit bool)

	// RecordSet records an insert or update with its latency.
	RecordSet(latencyNs int64)

	// RecordDelete records an explicit removal with its latency.
	RecordDelete(latencyNs int64)

	// RecordEviction records an entry leaving the cache through the policy.
	RecordEviction()
}

// NoOpMetricsCollector is a metrics collector that does nothing.
type NoOpMetricsCollector struct{}

// RecordGet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordSet does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordSet(latencyNs int64) {}

// RecordDelete does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordDelete(latencyNs int64) {}

// RecordEviction does nothing. Inlined by compiler.
func (NoOpMetricsCollector) RecordEviction() {}
