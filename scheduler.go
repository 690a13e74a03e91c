// scheduler.go: pluggable maintenance scheduling
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"sync/atomic"
)

// Scheduler decides when a maintenance task runs.
//
// A task that fails or panics never stops the scheduler: the failure is
// recorded and exposed through LastError.
type Scheduler interface {
	// Run requests execution of task. Depending on the implementation the
	// task runs synchronously, later on another goroutine, or never.
	Run(task func() error)

	// RunCount returns how many tasks have been executed.
	RunCount() int64

	// LastError returns the most recent task failure, or nil.
	LastError() error

	// IsBackground reports whether tasks run off the calling goroutine.
	IsBackground() bool
}

// schedulerState carries the observable state shared by the schedulers.
type schedulerState struct {
	name     string
	logger   Logger
	runCount atomic.Int64
	lastErr  atomic.Pointer[error]
}

func (s *schedulerState) RunCount() int64 {
	return s.runCount.Load()
}

func (s *schedulerState) LastError() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// execute runs task, converting errors and panics into the last error.
func (s *schedulerState) execute(task func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(NewErrPanicRecovered(s.name, r))
		}
	}()

	s.runCount.Add(1)
	if err := task(); err != nil {
		s.fail(NewErrMaintenanceFailed(s.name, err))
	}
}

func (s *schedulerState) fail(err error) {
	s.lastErr.Store(&err)
	if s.logger != nil {
		s.logger.Error("maintenance task failed", "scheduler", s.name, "error", err)
	}
}

// ForegroundScheduler runs every task synchronously on the calling goroutine.
// Useful for deterministic tests and for callers that want drains inline.
type ForegroundScheduler struct {
	schedulerState
}

// NewForegroundScheduler creates a scheduler running tasks inline.
func NewForegroundScheduler(logger Logger) *ForegroundScheduler {
	return &ForegroundScheduler{schedulerState{name: "foreground", logger: logger}}
}

// Run executes task immediately.
func (s *ForegroundScheduler) Run(task func() error) {
	s.execute(task)
}

// IsBackground returns false.
func (s *ForegroundScheduler) IsBackground() bool { return false }

// NullScheduler never runs anything. Maintenance then happens only when the
// caller invokes it explicitly or when a full write buffer forces it.
type NullScheduler struct{}

// Run discards task.
func (NullScheduler) Run(task func() error) {}

// RunCount always returns 0.
func (NullScheduler) RunCount() int64 { return 0 }

// LastError always returns nil.
func (NullScheduler) LastError() error { return nil }

// IsBackground returns false.
func (NullScheduler) IsBackground() bool { return false }
