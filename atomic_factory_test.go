// atomic_factory_test.go: tests for at-most-once construction cells
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAtomicFactory_ZeroValueIsEmpty(t *testing.T) {
	var f AtomicFactory[int, string]

	if f.State() != FactoryEmpty {
		t.Errorf("state = %v, want empty", f.State())
	}
	if f.IsValueCreated() {
		t.Error("zero value must not report a created value")
	}
	if _, ok := f.ValueIfCreated(); ok {
		t.Error("ValueIfCreated on an empty cell must fail")
	}
}

func TestAtomicFactory_GetValue(t *testing.T) {
	var f AtomicFactory[int, string]
	calls := 0

	for i := 0; i < 3; i++ {
		v, err := f.GetValue(1, func(k int) (string, error) {
			calls++
			return "one", nil
		})
		if err != nil || v != "one" {
			t.Fatalf("GetValue = %q, %v", v, err)
		}
	}

	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if f.State() != FactoryInitialized {
		t.Errorf("state = %v, want initialized", f.State())
	}
	if v, ok := f.ValueIfCreated(); !ok || v != "one" {
		t.Errorf("ValueIfCreated = %q, %v", v, ok)
	}
}

func TestAtomicFactory_WithValue(t *testing.T) {
	f := NewAtomicFactoryWithValue[int](42)

	v, err := f.GetValue(1, func(int) (int, error) {
		t.Error("factory must not run for an initialized cell")
		return 0, nil
	})
	if err != nil || v != 42 {
		t.Errorf("GetValue = %d, %v, want 42, nil", v, err)
	}
}

func TestAtomicFactory_ErrorLeavesCellRetryable(t *testing.T) {
	var f AtomicFactory[string, int]
	boom := errors.New("boom")

	_, err := f.GetValue("k", func(string) (int, error) { return 0, boom })
	if !errors.Is(err, boom) || GetErrorCode(err) != ErrCodeFactoryFailed {
		t.Fatalf("error = %v, want %s wrapping boom", err, ErrCodeFactoryFailed)
	}
	if f.State() != FactoryEmpty {
		t.Errorf("state after failure = %v, want empty", f.State())
	}

	v, err := f.GetValue("k", func(string) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("retry = %d, %v, want 7, nil", v, err)
	}
}

func TestAtomicFactory_PanicIsRecovered(t *testing.T) {
	var f AtomicFactory[int, int]

	_, err := f.GetValue(1, func(int) (int, error) { panic("nope") })
	if !IsPanicRecovered(err) {
		t.Fatalf("error = %v, want recovered panic", err)
	}
	if f.State() != FactoryEmpty {
		t.Errorf("state = %v, want empty", f.State())
	}
}

func TestAtomicFactory_NilFactory(t *testing.T) {
	var f AtomicFactory[int, int]
	if _, err := f.GetValue(1, nil); GetErrorCode(err) != ErrCodeInvalidFactory {
		t.Errorf("error = %v, want %s", err, ErrCodeInvalidFactory)
	}
}

func TestAtomicFactory_ConcurrentCallersShareOneConstruction(t *testing.T) {
	var f AtomicFactory[int, int]
	var calls atomic.Int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := f.GetValue(1, func(k int) (int, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return 99, nil
			})
			if err != nil || v != 99 {
				t.Errorf("GetValue = %d, %v", v, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
}

func TestAtomicFactory_WaiterContextCancelled(t *testing.T) {
	var f AtomicFactory[int, int]
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = f.GetValue(1, func(int) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.GetValueContext(ctx, 1, func(context.Context, int) (int, error) {
		t.Error("waiter must not construct")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}

	close(release)
	<-done
	if !f.IsValueCreated() {
		t.Error("construction should complete after the waiter left")
	}
}

func TestAtomicFactory_Close(t *testing.T) {
	item := &disposable{id: 1}
	var f AtomicFactory[int, *disposable]
	if _, err := f.GetValue(1, func(int) (*disposable, error) { return item, nil }); err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if item.closed.Load() != 1 {
		t.Errorf("value closed %d times, want 1", item.closed.Load())
	}
	if f.State() != FactoryDisposed {
		t.Errorf("state = %v, want disposed", f.State())
	}
	if _, err := f.GetValue(1, func(int) (*disposable, error) { return item, nil }); !IsFactoryDisposed(err) {
		t.Errorf("GetValue after Close error = %v, want factory disposed", err)
	}
}

func TestAtomicFactory_CloseDuringConstructionDisposesOrphan(t *testing.T) {
	var f AtomicFactory[int, *disposable]
	item := &disposable{id: 1}
	started := make(chan struct{})
	release := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := f.GetValue(1, func(int) (*disposable, error) {
			close(started)
			<-release
			return item, nil
		})
		errCh <- err
	}()
	<-started

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	close(release)

	if err := <-errCh; !IsFactoryDisposed(err) {
		t.Errorf("constructor error = %v, want factory disposed", err)
	}
	if !item.isDisposed() {
		t.Error("value built for a disposed cell must be closed")
	}
}

func TestFactoryState_String(t *testing.T) {
	tests := map[FactoryState]string{
		FactoryEmpty:        "empty",
		FactoryInitializing: "initializing",
		FactoryInitialized:  "initialized",
		FactoryDisposed:     "disposed",
		FactoryState(42):    "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestScopedAtomicFactory_WithValue(t *testing.T) {
	item := &disposable{id: 1}
	f := NewScopedAtomicFactoryWithValue[int](item)

	lt, ok := f.TryCreateLifetimeIfCreated()
	if !ok {
		t.Fatal("TryCreateLifetimeIfCreated failed on an initialized factory")
	}
	if lt.Value() != item {
		t.Error("lifetime exposes a different value")
	}
	_ = lt.Close()
}

func TestScopedAtomicFactory_ScopeIfCreated(t *testing.T) {
	var f ScopedAtomicFactory[int, *disposable]

	if _, ok := f.ScopeIfCreated(); ok {
		t.Error("scope must be absent before creation")
	}
	if _, ok := f.TryCreateLifetimeIfCreated(); ok {
		t.Error("lifetime must not be created before the value")
	}
	if f.IsScopeCreated() {
		t.Error("IsScopeCreated = true before creation")
	}

	lt, ok, err := f.TryCreateLifetime(1, func(k int) (*disposable, error) { return &disposable{id: k}, nil })
	if err != nil || !ok {
		t.Fatalf("TryCreateLifetime = %v, %v", ok, err)
	}
	defer lt.Close()

	scope, ok := f.ScopeIfCreated()
	if !ok || scope == nil {
		t.Fatal("scope must be present after creation")
	}
	if scope.ReferenceCount() != 2 {
		t.Errorf("reference count = %d, want 2", scope.ReferenceCount())
	}
}

func TestScopedAtomicFactory_DisposedFactoryRefusesLifetimes(t *testing.T) {
	var f ScopedAtomicFactory[int, *disposable]
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lt, ok, err := f.TryCreateLifetime(1, func(k int) (*disposable, error) { return &disposable{id: k}, nil })
	if err != nil {
		t.Errorf("disposed factory must fail without error, got %v", err)
	}
	if ok || lt != nil {
		t.Error("disposed factory must not create lifetimes")
	}
}

func TestScopedAtomicFactory_FactoryErrorIsReturned(t *testing.T) {
	var f ScopedAtomicFactory[int, *disposable]
	boom := errors.New("boom")

	_, ok, err := f.TryCreateLifetime(1, func(int) (*disposable, error) { return nil, boom })
	if ok || !errors.Is(err, boom) {
		t.Errorf("TryCreateLifetime = %v, %v, want false and boom", ok, err)
	}
}

func TestScopedAtomicFactory_LifetimeKeepsValueAlive(t *testing.T) {
	item := &disposable{id: 1}
	var f ScopedAtomicFactory[int, *disposable]

	lt1, ok, err := f.TryCreateLifetime(1, func(int) (*disposable, error) { return item, nil })
	if err != nil || !ok {
		t.Fatalf("first lifetime: %v, %v", ok, err)
	}
	lt2, ok, err := f.TryCreateLifetime(1, func(int) (*disposable, error) {
		t.Error("second lifetime must reuse the value")
		return &disposable{}, nil
	})
	if err != nil || !ok {
		t.Fatalf("second lifetime: %v, %v", ok, err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if item.isDisposed() {
		t.Fatal("value disposed while lifetimes are open")
	}

	_ = lt1.Close()
	if item.isDisposed() {
		t.Fatal("value disposed while one lifetime is open")
	}

	_ = lt2.Close()
	if item.closed.Load() != 1 {
		t.Errorf("value closed %d times, want 1", item.closed.Load())
	}
}
