// config.go: configuration for scopelfu
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"runtime"

	"github.com/agilira/go-timecache"
	"github.com/agilira/scopelfu/internal/util"
)

// Config holds configuration parameters for the cache.
type Config struct {
	// Capacity is the maximum number of entries the cache holds after maintenance.
	// Must be > 0. DefaultConfig uses DefaultCapacity.
	Capacity int

	// ConcurrencyLevel is a hint for the number of goroutines expected to
	// read concurrently. It sizes the read buffer stripes.
	// Must be >= 0. Default (0): GOMAXPROCS.
	ConcurrencyLevel int

	// ReadBufferSize is the capacity of each read buffer stripe.
	// Must be a power of two when set. Default: DefaultReadBufferSize.
	ReadBufferSize int

	// WriteBufferSize is the capacity of the write buffer.
	// Must be a power of two when set.
	// Default: the next power of two >= Capacity, capped at MaxWriteBufferSize.
	WriteBufferSize int

	// Scheduler decides when maintenance runs.
	// If nil, a ThreadPoolScheduler on the shared DefaultPool is used.
	Scheduler Scheduler

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider timestamps operation latencies and maintenance runs.
	// If nil, a go-timecache backed provider is used.
	TimeProvider TimeProvider

	// MetricsCollector receives operation latencies and evictions.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector

	// EnableEvents turns on the item removed / item updated event source.
	// Default: false.
	EnableEvents bool

	// DisableMetrics hides the metrics read-out. Counters used by the
	// adaptive window keep running. Default: false.
	DisableMetrics bool
}

// Validate checks configuration parameters and applies defaults.
//
// This method is automatically called by NewConcurrentLFU, so you typically
// don't need to call it manually.
//
// Errors:
//   - Capacity <= 0: SCOPELFU_INVALID_CAPACITY
//   - ConcurrencyLevel < 0: SCOPELFU_INVALID_CONCURRENCY
//   - buffer sizes that are negative or not powers of two: SCOPELFU_INVALID_BUFFER_SIZE
//
// Default values applied:
//   - ConcurrencyLevel: GOMAXPROCS if 0
//   - ReadBufferSize: DefaultReadBufferSize if 0
//   - WriteBufferSize: min(nextPow2(Capacity), MaxWriteBufferSize) if 0
//   - Scheduler: ThreadPoolScheduler on DefaultPool() if nil
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return NewErrInvalidCapacity(c.Capacity)
	}

	if c.ConcurrencyLevel < 0 {
		return NewErrInvalidConcurrency(c.ConcurrencyLevel)
	}
	if c.ConcurrencyLevel == 0 {
		c.ConcurrencyLevel = runtime.GOMAXPROCS(0)
	}

	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
	if c.ReadBufferSize < 0 || !util.IsPowerOfTwo(uint64(c.ReadBufferSize)) {
		return NewErrInvalidBufferSize("read", c.ReadBufferSize)
	}

	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaultWriteBufferSize(c.Capacity)
	}
	if c.WriteBufferSize < 0 || !util.IsPowerOfTwo(uint64(c.WriteBufferSize)) {
		return NewErrInvalidBufferSize("write", c.WriteBufferSize)
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.Scheduler == nil {
		c.Scheduler = NewThreadPoolScheduler(DefaultPool(), c.Logger)
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// The scheduler is left nil so each cache gets its own pool scheduler.
func DefaultConfig() Config {
	return Config{
		Capacity:         DefaultCapacity,
		ReadBufferSize:   DefaultReadBufferSize,
		WriteBufferSize:  defaultWriteBufferSize(DefaultCapacity),
		Logger:           NoOpLogger{},
		TimeProvider:     &systemTimeProvider{},
		MetricsCollector: NoOpMetricsCollector{},
	}
}

func defaultWriteBufferSize(capacity int) int {
	size := int(util.NextPow2(uint64(capacity))) // #nosec G115 - capacity is validated positive
	if size > MaxWriteBufferSize {
		return MaxWriteBufferSize
	}
	return size
}

// systemTimeProvider is the default time provider using go-timecache.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
