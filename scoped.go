// scoped.go: reference counted disposable values and their lifetimes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"io"
	"sync/atomic"
)

// Scoped wraps a disposable value with a reference count so that it is
// closed exactly once, after the cache and every Lifetime created from it
// have released it.
//
// The count starts at 1, the reference held by whoever owns the scope
// (typically the cache). Closing the scope releases that reference.
//
// Example:
//
//	scope := scopelfu.NewScoped(conn)
//	if lt, ok := scope.TryCreateLifetime(); ok {
//	    defer lt.Close()
//	    use(lt.Value())
//	}
type Scoped[V io.Closer] struct {
	value    V
	refs     atomic.Int64
	released atomic.Bool
}

// NewScoped wraps value. The returned scope holds one reference.
func NewScoped[V io.Closer](value V) *Scoped[V] {
	s := &Scoped[V]{value: value}
	s.refs.Store(1)
	return s
}

// TryCreateLifetime returns a new lifetime keeping the value alive.
// It fails, without error, once the reference count has reached zero.
func (s *Scoped[V]) TryCreateLifetime() (*Lifetime[V], bool) {
	for {
		refs := s.refs.Load()
		if refs <= 0 {
			return nil, false
		}
		if s.refs.CompareAndSwap(refs, refs+1) {
			return &Lifetime[V]{scope: s}, true
		}
	}
}

// CreateLifetime is like TryCreateLifetime but reports a disposed scope
// as SCOPELFU_SCOPE_DISPOSED.
func (s *Scoped[V]) CreateLifetime() (*Lifetime[V], error) {
	if lt, ok := s.TryCreateLifetime(); ok {
		return lt, nil
	}
	return nil, NewErrScopeDisposed()
}

// Close releases the owner's reference. Only the first call has an effect.
// The value is closed when no lifetime remains.
func (s *Scoped[V]) Close() error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	return s.release()
}

// IsDisposed reports whether the value has been closed.
func (s *Scoped[V]) IsDisposed() bool {
	return s.refs.Load() <= 0
}

// ReferenceCount returns the current number of references.
func (s *Scoped[V]) ReferenceCount() int64 {
	return s.refs.Load()
}

func (s *Scoped[V]) release() error {
	if s.refs.Add(-1) == 0 {
		return s.value.Close()
	}
	return nil
}

// Lifetime is a borrowed reference to a scoped value. The value stays open
// until the lifetime is closed.
type Lifetime[V io.Closer] struct {
	scope  *Scoped[V]
	closed atomic.Bool
}

// Value returns the scoped value.
func (l *Lifetime[V]) Value() V {
	return l.scope.value
}

// ReferenceCount returns the reference count of the underlying scope.
func (l *Lifetime[V]) ReferenceCount() int64 {
	return l.scope.ReferenceCount()
}

// Close releases the lifetime. Safe to call more than once.
func (l *Lifetime[V]) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.scope.release()
}
