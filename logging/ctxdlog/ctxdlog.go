// ctxdlog.go: bool64/ctxd adapter for the scopelfu Logger
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package ctxdlog bridges a contextualized github.com/bool64/ctxd logger into
// scopelfu.Logger.
package ctxdlog

import (
	"context"

	"github.com/agilira/scopelfu"
	"github.com/bool64/ctxd"
)

// Logger forwards scopelfu log calls to a ctxd.Logger with a fixed context.
type Logger struct {
	ctx context.Context
	log ctxd.Logger
}

// New returns a Logger writing to log. Cache log calls carry no context of
// their own, so ctx supplies the fields attached by ctxd.AddFields.
// A nil ctx is replaced with context.Background, a nil log with ctxd.NoOpLogger.
func New(ctx context.Context, log ctxd.Logger) *Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = ctxd.NoOpLogger{}
	}
	return &Logger{ctx: ctx, log: log}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.log.Debug(l.ctx, msg, keyvals...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.log.Info(l.ctx, msg, keyvals...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.log.Warn(l.ctx, msg, keyvals...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.log.Error(l.ctx, msg, keyvals...)
}

var _ scopelfu.Logger = (*Logger)(nil)
