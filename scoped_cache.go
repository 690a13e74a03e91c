// scoped_cache.go: cache decorator handing out lifetimes on disposable values
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
)

// ScopedCache stores disposable values wrapped in Scoped and hands them out
// as lifetimes. A value evicted, removed or replaced while a caller holds a
// lifetime stays open until that lifetime is closed.
//
// Example:
//
//	inner, _ := scopelfu.NewConcurrentLFU[string, *scopelfu.Scoped[*Conn]](cfg)
//	cache, _ := scopelfu.NewScopedCache[string, *Conn](inner)
//	lt, err := cache.ScopedGetOrAdd("db", dial)
//	if err != nil {
//	    return err
//	}
//	defer lt.Close()
//	lt.Value().Query(...)
type ScopedCache[K comparable, V io.Closer] struct {
	cache Cache[K, *Scoped[V]]
}

// NewScopedCache decorates cache. Returns SCOPELFU_NIL_CACHE if cache is nil.
func NewScopedCache[K comparable, V io.Closer](cache Cache[K, *Scoped[V]]) (*ScopedCache[K, V], error) {
	if cache == nil {
		return nil, NewErrNilCache("ScopedCache")
	}
	return &ScopedCache[K, V]{cache: cache}, nil
}

// ScopedGetOrAdd returns a lifetime on the value for key, constructing it
// with factory on a miss. The caller must close the lifetime.
//
// When the cached scope is disposed between lookup and lifetime creation the
// lookup is retried. After MaxScopedRetry failed attempts it returns
// SCOPELFU_SCOPED_RETRY_EXCEEDED.
func (s *ScopedCache[K, V]) ScopedGetOrAdd(key K, factory func(K) (V, error)) (*Lifetime[V], error) {
	if factory == nil {
		return nil, NewErrInvalidFactory(key)
	}
	return s.ScopedGetOrAddContext(context.Background(), key, func(_ context.Context, k K) (V, error) {
		return factory(k)
	})
}

// ScopedGetOrAddContext is like ScopedGetOrAdd with a context passed to the
// inner cache.
func (s *ScopedCache[K, V]) ScopedGetOrAddContext(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (*Lifetime[V], error) {
	if factory == nil {
		return nil, NewErrInvalidFactory(key)
	}

	scopedFactory := func(ctx context.Context, k K) (*Scoped[V], error) {
		v, err := factory(ctx, k)
		if err != nil {
			return nil, err
		}
		return NewScoped(v), nil
	}

	for attempt := 1; ; attempt++ {
		scope, err := s.cache.GetOrAddContext(ctx, key, scopedFactory)
		if err != nil {
			return nil, err
		}
		if lt, ok := scope.TryCreateLifetime(); ok {
			return lt, nil
		}
		if attempt >= MaxScopedRetry {
			return nil, NewErrScopedRetryExceeded(key, attempt)
		}
		runtime.Gosched()
	}
}

// ScopedTryGet returns a lifetime on the value for key if it is cached and
// not yet disposed.
func (s *ScopedCache[K, V]) ScopedTryGet(key K) (*Lifetime[V], bool) {
	scope, ok := s.cache.TryGet(key)
	if !ok {
		return nil, false
	}
	return scope.TryCreateLifetime()
}

// AddOrUpdate stores value for key. A replaced value is closed once its last
// lifetime is closed.
func (s *ScopedCache[K, V]) AddOrUpdate(key K, value V) {
	s.cache.AddOrUpdate(key, NewScoped(value))
}

// TryUpdate replaces the value of an existing key.
func (s *ScopedCache[K, V]) TryUpdate(key K, value V) bool {
	return s.cache.TryUpdate(key, NewScoped(value))
}

// TryRemove removes key.
func (s *ScopedCache[K, V]) TryRemove(key K) bool {
	return s.cache.TryRemove(key)
}

// Trim evicts up to n entries.
func (s *ScopedCache[K, V]) Trim(n int) {
	s.cache.Trim(n)
}

// Clear removes every entry.
func (s *ScopedCache[K, V]) Clear() {
	s.cache.Clear()
}

// Count returns the number of entries.
func (s *ScopedCache[K, V]) Count() int {
	return s.cache.Count()
}

// Keys returns a weakly consistent snapshot of the keys.
func (s *ScopedCache[K, V]) Keys() []K {
	return s.cache.Keys()
}

// All iterates the cached scopes.
func (s *ScopedCache[K, V]) All() iter.Seq2[K, *Scoped[V]] {
	return s.cache.All()
}

// Metrics returns the metrics of the inner cache.
func (s *ScopedCache[K, V]) Metrics() (CacheMetrics, bool) {
	return s.cache.Metrics()
}

// Policy returns the policy of the inner cache.
func (s *ScopedCache[K, V]) Policy() Policy {
	return s.cache.Policy()
}
