// events.go: item removed and item updated notifications
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import "sync"

// ItemRemovedReason tells why an entry left the cache.
type ItemRemovedReason int

const (
	// ReasonEvicted means the policy evicted the entry to respect capacity.
	ReasonEvicted ItemRemovedReason = iota
	// ReasonRemoved means the entry was removed explicitly.
	ReasonRemoved
	// ReasonCleared means the entry was removed by Clear.
	ReasonCleared
	// ReasonTrimmed means the entry was removed by Trim.
	ReasonTrimmed
)

func (r ItemRemovedReason) String() string {
	switch r {
	case ReasonEvicted:
		return "evicted"
	case ReasonRemoved:
		return "removed"
	case ReasonCleared:
		return "cleared"
	case ReasonTrimmed:
		return "trimmed"
	default:
		return "unknown"
	}
}

// ItemRemovedEvent describes an entry leaving the cache.
type ItemRemovedEvent[K comparable, V any] struct {
	Key    K
	Value  V
	Reason ItemRemovedReason
}

// ItemUpdatedEvent describes an in-place value replacement.
type ItemUpdatedEvent[K comparable, V any] struct {
	Key      K
	OldValue V
	NewValue V
}

// Events is the event source of a cache.
//
// Removals of every reason are delivered by the goroutine that ran the
// maintenance pass, after the pass has finished and just before the removed
// value is closed. Updates are delivered on the goroutine that performed them.
// Handlers may use the cache but should not block. A panicking handler is
// recovered and logged.
type Events[K comparable, V any] struct {
	mu      sync.RWMutex
	removed []func(ItemRemovedEvent[K, V])
	updated []func(ItemUpdatedEvent[K, V])
	logger  Logger
}

func newEvents[K comparable, V any](logger Logger) *Events[K, V] {
	return &Events[K, V]{logger: logger}
}

// OnItemRemoved registers a handler for removals.
func (e *Events[K, V]) OnItemRemoved(handler func(ItemRemovedEvent[K, V])) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	e.removed = append(e.removed, handler)
	e.mu.Unlock()
}

// OnItemUpdated registers a handler for updates.
func (e *Events[K, V]) OnItemUpdated(handler func(ItemUpdatedEvent[K, V])) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	e.updated = append(e.updated, handler)
	e.mu.Unlock()
}

func (e *Events[K, V]) fireRemoved(ev ItemRemovedEvent[K, V]) {
	e.mu.RLock()
	handlers := e.removed
	e.mu.RUnlock()

	for _, h := range handlers {
		e.call(func() { h(ev) })
	}
}

func (e *Events[K, V]) fireUpdated(ev ItemUpdatedEvent[K, V]) {
	e.mu.RLock()
	handlers := e.updated
	e.mu.RUnlock()

	for _, h := range handlers {
		e.call(func() { h(ev) })
	}
}

func (e *Events[K, V]) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked", "error", NewErrPanicRecovered("event", r))
		}
	}()
	fn()
}
