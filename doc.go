// Package scopelfu provides a concurrent, bounded, in-memory cache driven by
// a frequency based eviction policy, plus scoped lifetimes for disposable
// values.
//
// # Overview
//
// scopelfu is built around ConcurrentLFU, a cache whose hot path never takes
// a lock. Reads and writes are applied to the key index immediately and
// recorded in bounded buffers; a maintenance pass replays the buffers
// against the eviction policy under a single lock:
//   - Reads: lossy, striped ring buffers. A full stripe schedules maintenance.
//   - Writes: one bounded buffer. Writes are never dropped; a writer that
//     keeps finding it full runs maintenance itself.
//   - Maintenance: scheduled through a pluggable Scheduler.
//
// # Quick Start
//
//	cache, err := scopelfu.NewConcurrentLFU[string, User](scopelfu.Config{
//	    Capacity: 10_000,
//	})
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//
//	user, err := cache.GetOrAdd("user:123", func(key string) (User, error) {
//	    return fetchUser(key)
//	})
//
// Concurrent misses on the same key run the factory once; every caller gets
// the same value. Factory errors are returned wrapped with
// SCOPELFU_FACTORY_FAILED and nothing is cached.
//
// # Eviction Policy
//
// Entries are kept in three LRU segments:
//
//   - Window: new entries, about 1% of capacity
//   - Probation: entries that left the window, candidates for eviction
//   - Protected: entries read again while on probation, 80% of the main space
//
// When the cache is over capacity, entries leaving the window duel with the
// probation LRU entry; a TinyLFU count-min sketch (4-bit counters, halved
// every 10 x capacity increments) estimates both frequencies and the
// candidate is admitted only if it is strictly more frequent.
//
// A hill climber samples the hit rate every 10 x capacity reads and moves
// one slot between the window and the protected segment when the rate
// changes by more than 5%.
//
// # Schedulers
//
//   - ThreadPoolScheduler: default, runs maintenance on a shared pool bounded by GOMAXPROCS
//   - BackgroundScheduler: one dedicated goroutine per cache, stop with Close
//   - ForegroundScheduler: maintenance on the calling goroutine
//   - NullScheduler: never runs; call DoMaintenance yourself
//
// Task errors and panics are recovered and exposed through LastError.
//
// # Disposable Values
//
// Values that implement io.Closer are closed when they are evicted, removed,
// trimmed, cleared or replaced. When a value may still be in use after it
// leaves the cache, wrap it in a Scoped value and use ScopedCache:
//
//	inner, _ := scopelfu.NewConcurrentLFU[string, *scopelfu.Scoped[*sql.DB]](cfg)
//	cache, _ := scopelfu.NewScopedCache[string, *sql.DB](inner)
//
//	lt, err := cache.ScopedGetOrAdd("reports", openDB)
//	if err != nil {
//	    return err
//	}
//	defer lt.Close()
//	rows, err := lt.Value().Query(q)
//
// The value is closed once the cache and every Lifetime have released it.
// A lookup that keeps finding a disposed scope gives up after MaxScopedRetry
// attempts with SCOPELFU_SCOPED_RETRY_EXCEEDED.
//
// AtomicFactory and ScopedAtomicFactory are the lazy, at-most-once cells the
// cache uses internally; they can be used on their own.
//
// # Observability
//
// Metrics returns hits, misses, evictions and updates. Hits are counted when
// reads are replayed, so dropped reads are not counted. A MetricsCollector
// receives operation latencies timed with go-timecache:
//
//   - github.com/agilira/scopelfu/metrics/prom: Prometheus counters and histograms
//   - github.com/agilira/scopelfu/metrics/stats: bool64/stats tracker
//   - github.com/agilira/scopelfu/otel: OpenTelemetry meters (separate module)
//
// With EnableEvents, Events reports ItemRemoved (from maintenance) and
// ItemUpdated (from the updating goroutine).
//
// # Configuration
//
//	config := scopelfu.Config{
//	    Capacity:         10_000,                // required
//	    ConcurrencyLevel: 0,                     // read stripes, default GOMAXPROCS
//	    ReadBufferSize:   128,                   // per stripe, power of two
//	    WriteBufferSize:  0,                     // default min(nextPow2(Capacity), 128)
//	    Scheduler:        nil,                   // default ThreadPoolScheduler
//	    Logger:           ctxdlog.New(logger),   // default NoOpLogger
//	    MetricsCollector: prom.New(prometheus.DefaultRegisterer, "app"),
//	    EnableEvents:     true,
//	}
//
// HotConfig watches a configuration file with argus and applies
// cache.capacity through SetCapacity without a restart.
//
// # Error Handling
//
// Errors carry SCOPELFU_* codes from github.com/agilira/go-errors:
//
//	if scopelfu.IsFactoryError(err) && scopelfu.IsRetryable(err) {
//	    // retry later
//	}
//
// # Packages
//
//   - github.com/agilira/scopelfu: cache, scoped lifetimes, atomic factories
//   - github.com/agilira/scopelfu/metrics/prom: Prometheus collector
//   - github.com/agilira/scopelfu/metrics/stats: bool64/stats collector
//   - github.com/agilira/scopelfu/logging/ctxdlog: bool64/ctxd logger
//   - github.com/agilira/scopelfu/cmd/lfubench: load generator
//   - github.com/agilira/scopelfu/otel: OpenTelemetry integration (separate module)
//
// # License
//
// See LICENSE file in the repository.
package scopelfu
