// cache.go: ConcurrentLFU, the buffered W-TinyLFU cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"context"
	"io"
	"iter"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/agilira/scopelfu/internal/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// Drain status of the maintenance state machine.
const (
	drainIdle int32 = iota
	drainRequired
	drainProcessingToIdle
	drainProcessingToRequired
)

// Option customizes a ConcurrentLFU beyond Config.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	hasher func(K) uint64
}

// WithHasher sets the function used to hash keys for the frequency sketch.
// The default hashes strings, integers and byte arrays with xxhash and
// falls back to hash/maphash for other comparable keys.
func WithHasher[K comparable, V any](hasher func(K) uint64) Option[K, V] {
	return func(o *options[K, V]) {
		if hasher != nil {
			o.hasher = hasher
		}
	}
}

// ConcurrentLFU is a bounded concurrent cache with a W-TinyLFU policy.
//
// Lookups and writes touch only the concurrent index and record the event in
// a buffer. A single maintenance pass at a time replays the buffered events
// against the window, probation and protected segments, evicts down to
// capacity and releases evicted values. Maintenance runs on the configured
// Scheduler, on the caller when the write buffer is full, or explicitly via
// DoMaintenance.
//
// Values implementing io.Closer are closed when they leave the cache. Use
// ScopedCache to keep such values open while callers still use them.
type ConcurrentLFU[K comparable, V any] struct {
	store *store[K, V]
	hash  func(K) uint64

	readBuffer  *stripedBuffer[node[K, V]]
	writeBuffer *ringBuffer[node[K, V]]

	// evictionMu serializes maintenance. It is only ever taken with TryLock
	// on the hot path.
	evictionMu  sync.Mutex
	drainStatus atomic.Int32
	policy      *policy[K, V]
	retired     []retiredEntry[K, V]

	inflight *xsync.MapOf[K, *AtomicFactory[K, V]]

	scheduler    Scheduler
	logger       Logger
	timeProvider TimeProvider
	collector    MetricsCollector
	events       *Events[K, V]
	metrics      bool

	capacity  atomic.Int64
	hits      util.PaddedAtomicUint64
	misses    util.PaddedAtomicUint64
	evictions atomic.Uint64
	updates   atomic.Uint64

	closed atomic.Bool
}

// NewConcurrentLFU creates a cache from cfg.
//
// Parameters:
//   - cfg: cache configuration, validated and completed with defaults
//   - opts: optional settings such as WithHasher
//
// Returns the cache, or a SCOPELFU_INVALID_* error when cfg is invalid.
//
// Example:
//
//	cache, err := scopelfu.NewConcurrentLFU[string, *User](scopelfu.Config{
//	    Capacity: 10_000,
//	})
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//	user, err := cache.GetOrAdd("user:123", loadUser)
func NewConcurrentLFU[K comparable, V any](cfg Config, opts ...Option[K, V]) (*ConcurrentLFU[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options[K, V]{hasher: util.Hash[K]}
	for _, opt := range opts {
		opt(&o)
	}

	c := &ConcurrentLFU[K, V]{
		store:        newStore[K, V](cfg.Capacity),
		hash:         o.hasher,
		readBuffer:   newStripedBuffer[node[K, V]](cfg.ConcurrencyLevel, cfg.ReadBufferSize),
		writeBuffer:  newRingBuffer[node[K, V]](cfg.WriteBufferSize),
		inflight:     xsync.NewMapOf[K, *AtomicFactory[K, V]](),
		scheduler:    cfg.Scheduler,
		logger:       cfg.Logger,
		timeProvider: cfg.TimeProvider,
		collector:    cfg.MetricsCollector,
		metrics:      !cfg.DisableMetrics,
	}
	c.policy = newPolicy[K, V](cfg.Capacity, c.evictNode)
	c.capacity.Store(int64(cfg.Capacity))
	if cfg.EnableEvents {
		c.events = newEvents[K, V](cfg.Logger)
	}

	c.logger.Debug("cache created",
		"capacity", cfg.Capacity,
		"read_stripes", c.readBuffer.stripeCount(),
		"write_buffer", c.writeBuffer.capacity())
	return c, nil
}

// GetOrAdd returns the value for key, constructing it with factory on a miss.
// Concurrent misses on the same key share a single factory call.
//
// Returns:
//   - the cached or constructed value
//   - SCOPELFU_INVALID_FACTORY if factory is nil
//   - SCOPELFU_FACTORY_FAILED wrapping the factory error (nothing is cached)
//   - SCOPELFU_PANIC_RECOVERED if factory panics
//   - SCOPELFU_CACHE_CLOSED after Close
func (c *ConcurrentLFU[K, V]) GetOrAdd(key K, factory func(K) (V, error)) (V, error) {
	if factory == nil {
		var zero V
		return zero, NewErrInvalidFactory(key)
	}
	return c.GetOrAddContext(context.Background(), key, func(_ context.Context, k K) (V, error) {
		return factory(k)
	})
}

// GetOrAddContext is like GetOrAdd. The goroutine running factory receives
// ctx; goroutines waiting for it return ctx.Err() when ctx is done.
func (c *ConcurrentLFU[K, V]) GetOrAddContext(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error) {
	var zero V
	if factory == nil {
		return zero, NewErrInvalidFactory(key)
	}
	if c.closed.Load() {
		return zero, NewErrCacheClosed("GetOrAdd")
	}

	if v, ok := c.TryGet(key); ok {
		return v, nil
	}

	cell, _ := c.inflight.LoadOrCompute(key, func() *AtomicFactory[K, V] {
		return &AtomicFactory[K, V]{}
	})
	v, err := cell.GetValueContext(ctx, key, func(ctx context.Context, k K) (V, error) {
		return c.loadOrConstruct(ctx, k, factory)
	})
	// A waiter that gave up leaves the cell to the goroutine still constructing.
	c.inflight.Compute(key, func(old *AtomicFactory[K, V], loaded bool) (*AtomicFactory[K, V], bool) {
		return old, !loaded || (old == cell && old.State() != FactoryInitializing)
	})
	return v, err
}

// loadOrConstruct runs on the goroutine owning the in-flight cell for key.
// A value stored since the miss is returned and recorded as a read.
func (c *ConcurrentLFU[K, V]) loadOrConstruct(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error) {
	if n, ok := c.store.load(key); ok {
		if v, ok := n.load(); ok {
			c.afterRead(n)
			return v, nil
		}
	}
	v, err := factory(ctx, key)
	if err != nil {
		return v, err
	}
	return c.insert(key, v), nil
}

// insert maps a freshly constructed value. When another value won the race
// for key, value is disposed and the winner is returned.
func (c *ConcurrentLFU[K, V]) insert(key K, value V) V {
	start := c.timeProvider.Now()
	n := newNode(key, c.hash(key), value)
	for {
		existing, loaded := c.store.loadOrStore(n)
		if !loaded {
			c.afterWrite(n)
			c.collector.RecordSet(c.timeProvider.Now() - start)
			return value
		}
		if v, ok := existing.load(); ok {
			if !sameValue(v, value) {
				c.dispose(value)
			}
			return v
		}
		// existing is being retired and is about to leave the index
		runtime.Gosched()
	}
}

// TryGet returns the value for key.
func (c *ConcurrentLFU[K, V]) TryGet(key K) (V, bool) {
	start := c.timeProvider.Now()
	if n, ok := c.store.load(key); ok {
		if v, ok := n.load(); ok {
			c.afterRead(n)
			c.collector.RecordGet(c.timeProvider.Now()-start, true)
			return v, true
		}
	}

	c.misses.Add(1)
	c.collector.RecordGet(c.timeProvider.Now()-start, false)
	var zero V
	return zero, false
}

// TryRemove removes key and reports whether it was present. The value is
// released, and closed if it is an io.Closer, by the next maintenance pass.
func (c *ConcurrentLFU[K, V]) TryRemove(key K) bool {
	start := c.timeProvider.Now()
	n, ok := c.store.loadAndDelete(key)
	if !ok {
		return false
	}

	n.removed.Store(true)
	c.afterWrite(n)
	c.collector.RecordDelete(c.timeProvider.Now() - start)
	return true
}

// TryUpdate replaces the value of an existing key and reports whether it did.
// The previous value is closed if it is an io.Closer. After Close it always
// returns false.
func (c *ConcurrentLFU[K, V]) TryUpdate(key K, value V) bool {
	if c.closed.Load() {
		return false
	}
	start := c.timeProvider.Now()
	n, ok := c.store.load(key)
	if !ok {
		return false
	}
	old, ok := n.replace(value)
	if !ok {
		return false
	}

	c.replaced(n, old, value)
	c.afterWrite(n)
	c.collector.RecordSet(c.timeProvider.Now() - start)
	return true
}

// AddOrUpdate stores value for key, replacing any existing value.
// After Close the value is not stored and is closed if it is an io.Closer.
func (c *ConcurrentLFU[K, V]) AddOrUpdate(key K, value V) {
	if c.closed.Load() {
		c.dispose(value)
		return
	}
	for {
		if c.TryUpdate(key, value) {
			return
		}

		start := c.timeProvider.Now()
		n := newNode(key, c.hash(key), value)
		if _, loaded := c.store.loadOrStore(n); !loaded {
			c.afterWrite(n)
			c.collector.RecordSet(c.timeProvider.Now() - start)
			return
		}
		runtime.Gosched()
	}
}

func (c *ConcurrentLFU[K, V]) replaced(n *node[K, V], old, value V) {
	c.updates.Add(1)
	if c.events != nil {
		c.events.fireUpdated(ItemUpdatedEvent[K, V]{Key: n.key, OldValue: old, NewValue: value})
	}
	if !sameValue(old, value) {
		c.dispose(old)
	}
}

// dispose closes a value released on the calling goroutine.
func (c *ConcurrentLFU[K, V]) dispose(v V) {
	if err := disposeValue(v); err != nil {
		c.logger.Warn("dispose failed", "error", err)
	}
}

// Trim evicts up to n entries: probation first, then window, then protected,
// each in LRU order. Pending writes are applied first.
func (c *ConcurrentLFU[K, V]) Trim(n int) {
	if n <= 0 {
		return
	}

	c.evictionMu.Lock()
	c.maintenance(nil)
	trimmed := c.policy.trim(n)
	err := c.releaseRetired()

	c.logger.Debug("cache trimmed", "requested", n, "trimmed", trimmed)
	if err != nil {
		c.logger.Warn("dispose failed during trim", "error", err)
	}
}

// Clear removes every entry, closing values that are io.Closers.
func (c *ConcurrentLFU[K, V]) Clear() {
	if err := c.clear(); err != nil {
		c.logger.Warn("dispose failed during clear", "error", err)
	}
}

func (c *ConcurrentLFU[K, V]) clear() error {
	c.evictionMu.Lock()
	c.maintenance(nil)
	c.policy.clear(ReasonCleared)
	return c.releaseRetired()
}

// DoMaintenance applies every pending read and write and evicts down to
// capacity on the calling goroutine. It returns the errors raised by values
// closed during the pass.
func (c *ConcurrentLFU[K, V]) DoMaintenance() error {
	c.evictionMu.Lock()
	c.maintenance(nil)
	return c.releaseRetired()
}

// Count returns the number of indexed entries. It may briefly exceed the
// capacity until the next maintenance pass.
func (c *ConcurrentLFU[K, V]) Count() int {
	return c.store.size()
}

// Keys returns a weakly consistent snapshot of the keys.
func (c *ConcurrentLFU[K, V]) Keys() []K {
	keys := make([]K, 0, c.store.size())
	c.store.rangeNodes(func(n *node[K, V]) bool {
		keys = append(keys, n.key)
		return true
	})
	return keys
}

// All iterates a weakly consistent view of the entries. Each key is yielded
// at most once; entries removed during iteration may or may not be seen.
func (c *ConcurrentLFU[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c.store.rangeNodes(func(n *node[K, V]) bool {
			v, ok := n.load()
			if !ok {
				return true
			}
			return yield(n.key, v)
		})
	}
}

// Metrics returns the counters and false when metrics are disabled.
func (c *ConcurrentLFU[K, V]) Metrics() (CacheMetrics, bool) {
	if !c.metrics {
		return CacheMetrics{}, false
	}
	return CacheMetrics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Updates:   c.updates.Load(),
		Size:      c.store.size(),
		Capacity:  c.Capacity(),
	}, true
}

// Events returns the event source and false when events are disabled.
func (c *ConcurrentLFU[K, V]) Events() (*Events[K, V], bool) {
	return c.events, c.events != nil
}

// Policy returns the eviction policy. The cache does not expire entries.
func (c *ConcurrentLFU[K, V]) Policy() Policy {
	return Policy{Eviction: c}
}

// Capacity returns the maximum number of entries after maintenance.
func (c *ConcurrentLFU[K, V]) Capacity() int {
	return int(c.capacity.Load())
}

// SetCapacity changes the maximum number of entries and evicts down to it.
// Buffer sizes keep their original values.
func (c *ConcurrentLFU[K, V]) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return NewErrInvalidCapacity(capacity)
	}

	c.evictionMu.Lock()
	c.maintenance(nil)
	previous := c.policy.part.capacity
	c.policy.setCapacity(capacity)
	c.capacity.Store(int64(capacity))
	err := c.releaseRetired()

	c.logger.Info("cache capacity changed", "from", previous, "to", capacity)
	return err
}

// Scheduler returns the scheduler running maintenance.
func (c *ConcurrentLFU[K, V]) Scheduler() Scheduler {
	return c.scheduler
}

// Close stops the scheduler when it is an io.Closer, removes every entry and
// makes GetOrAdd fail with SCOPELFU_CACHE_CLOSED. Later writes are refused.
// Calling Close twice is a no-op.
func (c *ConcurrentLFU[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if closer, ok := c.scheduler.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.clear(); err != nil {
		errs = append(errs, err)
	}

	c.logger.Debug("cache closed", "scheduler_runs", c.scheduler.RunCount())
	if len(errs) == 1 {
		return errs[0]
	}
	return NewErrDisposeFailed(errs)
}

// afterRead records a read and schedules a drain when the buffer is full.
// Reads that do not fit are dropped.
func (c *ConcurrentLFU[K, V]) afterRead(n *node[K, V]) {
	status := c.readBuffer.tryAdd(n)
	if status == bufferFull || c.drainStatus.Load() == drainRequired {
		c.scheduleDrain()
	}
}

// afterWrite records a write. Writes are never dropped: when the buffer stays
// full the caller runs maintenance itself with n as an extra write.
func (c *ConcurrentLFU[K, V]) afterWrite(n *node[K, V]) {
	for i := 0; i < writeBufferRetries; i++ {
		switch c.writeBuffer.tryAdd(n) {
		case bufferSuccess:
			c.scheduleAfterWrite()
			return
		case bufferFull:
			c.scheduleDrain()
		}
		runtime.Gosched()
	}

	c.logger.Debug("write buffer full, running maintenance on caller",
		"pending", c.writeBuffer.size())
	c.evictionMu.Lock()
	c.maintenance(n)
	if err := c.releaseRetired(); err != nil {
		c.logger.Warn("dispose failed during maintenance", "error", err)
	}
}

func (c *ConcurrentLFU[K, V]) scheduleAfterWrite() {
	for {
		switch c.drainStatus.Load() {
		case drainIdle:
			c.drainStatus.CompareAndSwap(drainIdle, drainRequired)
			c.scheduleDrain()
			return
		case drainRequired:
			c.scheduleDrain()
			return
		case drainProcessingToIdle:
			if c.drainStatus.CompareAndSwap(drainProcessingToIdle, drainProcessingToRequired) {
				return
			}
		case drainProcessingToRequired:
			return
		}
	}
}

// scheduleDrain hands a maintenance task to the scheduler unless a pass is
// already running.
//
// The lock is taken here and handed to the task through token: a
// synchronous scheduler runs the task while the lock is still held, so the
// task claims the lock instead of waiting for it. Whoever flips the token
// first owns the unlock.
func (c *ConcurrentLFU[K, V]) scheduleDrain() {
	if !c.evictionMu.TryLock() {
		return
	}

	c.drainStatus.Store(drainProcessingToIdle)
	var token atomic.Uint32
	c.scheduler.Run(func() error {
		return c.drainBuffers(&token)
	})
	if token.CompareAndSwap(0, 1) {
		c.evictionMu.Unlock()
	}
}

// drainBuffers is the scheduled maintenance task.
func (c *ConcurrentLFU[K, V]) drainBuffers(token *atomic.Uint32) error {
	switch {
	case c.evictionMu.TryLock():
	case token.CompareAndSwap(0, 1):
		// lock handed over by scheduleDrain
	default:
		c.evictionMu.Lock()
	}

	c.maintenance(nil)
	err := c.releaseRetired()

	c.rescheduleIfIncomplete()
	return err
}

func (c *ConcurrentLFU[K, V]) rescheduleIfIncomplete() {
	if c.drainStatus.Load() == drainRequired {
		c.scheduleDrain()
	}
}

// maintenance replays buffered events and evicts. extra is a write that did
// not fit in the buffer. Must be called with evictionMu held.
func (c *ConcurrentLFU[K, V]) maintenance(extra *node[K, V]) {
	c.drainStatus.Store(drainProcessingToIdle)

	c.readBuffer.drainTo(c.onAccess)
	c.writeBuffer.drainTo(c.onWrite)
	if extra != nil {
		c.onWrite(extra)
	}

	c.policy.evictEntries()
	c.policy.optimize(c.hits.Load(), c.misses.Load())

	if !c.drainStatus.CompareAndSwap(drainProcessingToIdle, drainIdle) {
		c.drainStatus.Store(drainRequired)
	}
}

func (c *ConcurrentLFU[K, V]) onAccess(n *node[K, V]) {
	c.hits.Add(1)
	c.policy.onAccess(n)
}

func (c *ConcurrentLFU[K, V]) onWrite(n *node[K, V]) {
	if n.removed.Load() {
		c.policy.unlink(n)
		if !n.deleted {
			c.retire(n, ReasonRemoved)
		}
		return
	}
	if n.deleted {
		return
	}
	c.policy.onWrite(n)
}

// evictNode is the policy eviction callback for a node it already unlinked.
func (c *ConcurrentLFU[K, V]) evictNode(n *node[K, V], reason ItemRemovedReason) {
	c.store.removeIfSame(n)
	if n.removed.Swap(true) {
		// explicitly removed with the removal write still buffered
		reason = ReasonRemoved
	}
	c.retire(n, reason)
	c.collector.RecordEviction()
}

// retiredEntry is a value that left the cache during a maintenance pass.
type retiredEntry[K comparable, V any] struct {
	key    K
	value  V
	reason ItemRemovedReason
}

// retire accounts for a node that left the cache and queues its value for
// release. Must be called with evictionMu held.
func (c *ConcurrentLFU[K, V]) retire(n *node[K, V], reason ItemRemovedReason) {
	n.deleted = true
	c.evictions.Add(1)

	v, ok := n.take()
	if !ok {
		return
	}
	c.retired = append(c.retired, retiredEntry[K, V]{key: n.key, value: v, reason: reason})
}

// releaseRetired unlocks evictionMu, then fires the removal events and
// closes the values retired by the pass. Handlers may therefore write to the
// cache or run maintenance themselves. Must be called with evictionMu held.
func (c *ConcurrentLFU[K, V]) releaseRetired() error {
	retired := c.retired
	c.retired = nil
	c.evictionMu.Unlock()

	var errs []error
	for _, r := range retired {
		if c.events != nil {
			c.events.fireRemoved(ItemRemovedEvent[K, V]{Key: r.key, Value: r.value, Reason: r.reason})
		}
		if err := disposeValue(r.value); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return NewErrDisposeFailed(errs)
}

var (
	_ Cache[string, any] = (*ConcurrentLFU[string, any])(nil)
	_ EvictionPolicy     = (*ConcurrentLFU[string, any])(nil)
)
