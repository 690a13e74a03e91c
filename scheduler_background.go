// scheduler_background.go: dedicated maintenance goroutine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import (
	"sync"
)

// backgroundQueueSize bounds the tasks waiting for the background worker.
const backgroundQueueSize = 16

// BackgroundScheduler owns a long-lived worker goroutine that executes
// maintenance tasks one at a time. Close stops the worker and waits for it.
type BackgroundScheduler struct {
	schedulerState

	work      chan func() error
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewBackgroundScheduler starts a worker goroutine.
func NewBackgroundScheduler(logger Logger) *BackgroundScheduler {
	if logger == nil {
		logger = NoOpLogger{}
	}
	s := &BackgroundScheduler{
		schedulerState: schedulerState{name: "background", logger: logger},
		work:           make(chan func() error, backgroundQueueSize),
		done:           make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

// Run queues task for the worker. Tasks submitted after Close, or while the
// queue is full, are dropped: callers may hold the maintenance lock, and a
// queued task drains the same buffers.
func (s *BackgroundScheduler) Run(task func() error) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.work <- task:
	default:
		s.logger.Debug("background queue full, task dropped", "queue", backgroundQueueSize)
	}
}

// IsBackground returns true.
func (s *BackgroundScheduler) IsBackground() bool { return true }

// Close stops the worker and waits for the task in progress to finish.
// Queued tasks that have not started are dropped; the cache performs a final
// drain itself when it is closed.
func (s *BackgroundScheduler) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.logger.Debug("background scheduler stopped", "runs", s.RunCount())
	})
	return nil
}

func (s *BackgroundScheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case task := <-s.work:
			s.execute(task)
		}
	}
}
