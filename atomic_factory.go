// atomic_factory.go: at-most-once value construction cells
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"context"
	"io"
	"sync/atomic"
)

// FactoryState is the state of an AtomicFactory.
type FactoryState int32

const (
	// FactoryEmpty holds no value; the next caller constructs it.
	FactoryEmpty FactoryState = iota
	// FactoryInitializing means a caller is running the factory.
	FactoryInitializing
	// FactoryInitialized holds the constructed value.
	FactoryInitialized
	// FactoryDisposed is terminal; no value will ever be created.
	FactoryDisposed
)

func (s FactoryState) String() string {
	switch s {
	case FactoryEmpty:
		return "empty"
	case FactoryInitializing:
		return "initializing"
	case FactoryInitialized:
		return "initialized"
	case FactoryDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// factoryCall is one construction attempt that waiters join.
type factoryCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// AtomicFactory constructs a value at most once, however many goroutines
// ask for it concurrently. The goroutine that moves the cell from Empty to
// Initializing runs the factory; the others wait for its result.
//
// A failed construction returns the cell to Empty so a later call can retry.
// The zero value is an empty cell ready for use.
type AtomicFactory[K comparable, V any] struct {
	state atomic.Int32
	value V
	call  atomic.Pointer[factoryCall[V]]
}

// NewAtomicFactoryWithValue returns a cell already holding value.
func NewAtomicFactoryWithValue[K comparable, V any](value V) *AtomicFactory[K, V] {
	a := &AtomicFactory[K, V]{value: value}
	a.state.Store(int32(FactoryInitialized))
	return a
}

// State returns the current state of the cell.
func (a *AtomicFactory[K, V]) State() FactoryState {
	return FactoryState(a.state.Load())
}

// IsValueCreated reports whether the value has been constructed.
func (a *AtomicFactory[K, V]) IsValueCreated() bool {
	return a.State() == FactoryInitialized
}

// ValueIfCreated returns the value if it has been constructed.
func (a *AtomicFactory[K, V]) ValueIfCreated() (V, bool) {
	if a.State() == FactoryInitialized {
		return a.value, true
	}
	var zero V
	return zero, false
}

// GetValue returns the value, constructing it with factory if needed.
func (a *AtomicFactory[K, V]) GetValue(key K, factory func(K) (V, error)) (V, error) {
	if factory == nil {
		var zero V
		return zero, NewErrInvalidFactory(key)
	}
	return a.GetValueContext(context.Background(), key, func(_ context.Context, k K) (V, error) {
		return factory(k)
	})
}

// GetValueContext is like GetValue; waiters stop waiting when ctx is done.
// The winner passes ctx to factory.
func (a *AtomicFactory[K, V]) GetValueContext(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (V, error) {
	var zero V
	if factory == nil {
		return zero, NewErrInvalidFactory(key)
	}

	for {
		switch a.State() {
		case FactoryInitialized:
			return a.value, nil
		case FactoryDisposed:
			return zero, NewErrFactoryDisposed(key)
		}

		if call := a.call.Load(); call != nil {
			select {
			case <-call.done:
				return call.value, call.err
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		call := &factoryCall[V]{done: make(chan struct{})}
		if !a.call.CompareAndSwap(nil, call) {
			continue
		}
		return a.construct(ctx, key, call, factory)
	}
}

// construct runs factory on behalf of the call this goroutine claimed.
func (a *AtomicFactory[K, V]) construct(ctx context.Context, key K, call *factoryCall[V], factory func(context.Context, K) (V, error)) (V, error) {
	defer func() {
		a.call.Store(nil)
		close(call.done)
	}()

	if !a.state.CompareAndSwap(int32(FactoryEmpty), int32(FactoryInitializing)) {
		// Finished or disposed between the state check and the claim.
		if a.State() == FactoryInitialized {
			call.value = a.value
		} else {
			call.err = NewErrFactoryDisposed(key)
		}
		return call.value, call.err
	}

	value, err := invokeFactory(ctx, key, factory)
	if err != nil {
		a.state.CompareAndSwap(int32(FactoryInitializing), int32(FactoryEmpty))
		call.err = err
		return call.value, call.err
	}

	a.value = value
	if !a.state.CompareAndSwap(int32(FactoryInitializing), int32(FactoryInitialized)) {
		// Disposed while constructing: nobody else will own the value.
		_ = disposeValue(value)
		var zero V
		a.value = zero
		call.err = NewErrFactoryDisposed(key)
		return call.value, call.err
	}

	call.value = value
	return call.value, nil
}

// Close moves the cell to Disposed and closes the value if it was created
// and implements io.Closer.
func (a *AtomicFactory[K, V]) Close() error {
	for {
		state := a.state.Load()
		if FactoryState(state) == FactoryDisposed {
			return nil
		}
		if a.state.CompareAndSwap(state, int32(FactoryDisposed)) {
			if FactoryState(state) == FactoryInitialized {
				return disposeValue(a.value)
			}
			return nil
		}
	}
}

func invokeFactory[K comparable, V any](ctx context.Context, key K, factory func(context.Context, K) (V, error)) (value V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			value, err = zero, NewErrPanicRecovered("factory", r)
		}
	}()

	value, err = factory(ctx, key)
	if err != nil {
		var zero V
		return zero, NewErrFactoryFailed(key, err)
	}
	return value, nil
}

// ScopedAtomicFactory combines an AtomicFactory with a Scoped value: the
// disposable value is constructed at most once and handed out as lifetimes.
// The zero value is ready for use.
type ScopedAtomicFactory[K comparable, V io.Closer] struct {
	cell AtomicFactory[K, *Scoped[V]]
}

// NewScopedAtomicFactoryWithValue returns a factory already holding value.
func NewScopedAtomicFactoryWithValue[K comparable, V io.Closer](value V) *ScopedAtomicFactory[K, V] {
	f := &ScopedAtomicFactory[K, V]{}
	f.cell.value = NewScoped(value)
	f.cell.state.Store(int32(FactoryInitialized))
	return f
}

// TryCreateLifetime returns a lifetime on the value, constructing it with
// factory if needed. It returns false without error when the factory or the
// scope has been disposed. Factory errors are returned as is.
func (f *ScopedAtomicFactory[K, V]) TryCreateLifetime(key K, factory func(K) (V, error)) (*Lifetime[V], bool, error) {
	if factory == nil {
		return nil, false, NewErrInvalidFactory(key)
	}
	return f.TryCreateLifetimeContext(context.Background(), key, func(_ context.Context, k K) (V, error) {
		return factory(k)
	})
}

// TryCreateLifetimeContext is like TryCreateLifetime with a context for the
// factory and for waiting on a concurrent construction.
func (f *ScopedAtomicFactory[K, V]) TryCreateLifetimeContext(ctx context.Context, key K, factory func(context.Context, K) (V, error)) (*Lifetime[V], bool, error) {
	if factory == nil {
		return nil, false, NewErrInvalidFactory(key)
	}

	scope, err := f.cell.GetValueContext(ctx, key, func(ctx context.Context, k K) (*Scoped[V], error) {
		v, err := factory(ctx, k)
		if err != nil {
			return nil, err
		}
		return NewScoped(v), nil
	})
	if err != nil {
		if IsFactoryDisposed(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	lt, ok := scope.TryCreateLifetime()
	return lt, ok, nil
}

// TryCreateLifetimeIfCreated returns a lifetime only if the value exists.
func (f *ScopedAtomicFactory[K, V]) TryCreateLifetimeIfCreated() (*Lifetime[V], bool) {
	scope, ok := f.cell.ValueIfCreated()
	if !ok {
		return nil, false
	}
	return scope.TryCreateLifetime()
}

// ScopeIfCreated returns the scope if the value has been constructed.
func (f *ScopedAtomicFactory[K, V]) ScopeIfCreated() (*Scoped[V], bool) {
	return f.cell.ValueIfCreated()
}

// IsScopeCreated reports whether the value has been constructed.
func (f *ScopedAtomicFactory[K, V]) IsScopeCreated() bool {
	return f.cell.IsValueCreated()
}

// Close disposes the factory and releases the owner's reference on the scope.
// Outstanding lifetimes keep the value open until they are closed.
func (f *ScopedAtomicFactory[K, V]) Close() error {
	return f.cell.Close()
}
