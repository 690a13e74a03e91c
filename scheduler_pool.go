// scheduler_pool.go: maintenance on a shared bounded goroutine pool
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

var defaultPool = sync.OnceValue(func() *semaphore.Weighted {
	return semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
})

// DefaultPool returns the process-wide pool shared by ThreadPoolSchedulers.
// At most GOMAXPROCS maintenance tasks run at once across all caches using it.
func DefaultPool() *semaphore.Weighted {
	return defaultPool()
}

// ThreadPoolScheduler runs maintenance on short-lived goroutines admitted by
// a shared semaphore. At most one task per scheduler is queued at a time;
// requests made while a task waits for the pool are dropped.
//
// A ThreadPoolScheduler serves a single cache. Share the pool, not the
// scheduler.
type ThreadPoolScheduler struct {
	schedulerState

	pool    *semaphore.Weighted
	pending atomic.Bool
}

// NewThreadPoolScheduler creates a scheduler on pool. A nil pool means DefaultPool.
func NewThreadPoolScheduler(pool *semaphore.Weighted, logger Logger) *ThreadPoolScheduler {
	if pool == nil {
		pool = DefaultPool()
	}
	if logger == nil {
		logger = NoOpLogger{}
	}
	return &ThreadPoolScheduler{
		schedulerState: schedulerState{name: "threadpool", logger: logger},
		pool:           pool,
	}
}

// Run submits task unless another one is already queued.
func (s *ThreadPoolScheduler) Run(task func() error) {
	if !s.pending.CompareAndSwap(false, true) {
		return
	}

	go func() {
		if err := s.pool.Acquire(context.Background(), 1); err != nil {
			s.pending.Store(false)
			s.fail(NewErrInternal("threadpool.acquire", err))
			return
		}
		defer s.pool.Release(1)

		// Cleared before running so a request made during the task is kept.
		s.pending.Store(false)
		s.execute(task)
	}()
}

// IsBackground returns true.
func (s *ThreadPoolScheduler) IsBackground() bool { return true }
