// errors.go: structured error handling for scopelfu cache operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all cache, scheduler and scoped value operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package scopelfu

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes for scopelfu operations
const (
	// Configuration errors
	ErrCodeInvalidConfig      errors.ErrorCode = "SCOPELFU_INVALID_CONFIG"
	ErrCodeInvalidCapacity    errors.ErrorCode = "SCOPELFU_INVALID_CAPACITY"
	ErrCodeInvalidConcurrency errors.ErrorCode = "SCOPELFU_INVALID_CONCURRENCY"
	ErrCodeInvalidBufferSize  errors.ErrorCode = "SCOPELFU_INVALID_BUFFER_SIZE"
	ErrCodeNilCache           errors.ErrorCode = "SCOPELFU_NIL_CACHE"

	// Factory errors
	ErrCodeInvalidFactory  errors.ErrorCode = "SCOPELFU_INVALID_FACTORY"
	ErrCodeFactoryFailed   errors.ErrorCode = "SCOPELFU_FACTORY_FAILED"
	ErrCodeFactoryDisposed errors.ErrorCode = "SCOPELFU_FACTORY_DISPOSED"

	// Scoped value errors
	ErrCodeScopedRetryExceeded errors.ErrorCode = "SCOPELFU_SCOPED_RETRY_EXCEEDED"
	ErrCodeScopeDisposed       errors.ErrorCode = "SCOPELFU_SCOPE_DISPOSED"

	// Operation errors
	ErrCodeCacheClosed       errors.ErrorCode = "SCOPELFU_CACHE_CLOSED"
	ErrCodeMaintenanceFailed errors.ErrorCode = "SCOPELFU_MAINTENANCE_FAILED"
	ErrCodeDisposeFailed     errors.ErrorCode = "SCOPELFU_DISPOSE_FAILED"

	// Internal errors
	ErrCodeInternalError  errors.ErrorCode = "SCOPELFU_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "SCOPELFU_PANIC_RECOVERED"
)

// Common error messages
const (
	msgInvalidConfig       = "invalid cache configuration"
	msgInvalidCapacity     = "invalid capacity: must be greater than 0"
	msgInvalidConcurrency  = "invalid concurrency level: must be greater than 0"
	msgInvalidBufferSize   = "invalid buffer size: must be a positive power of two"
	msgNilCache            = "inner cache cannot be nil"
	msgInvalidFactory      = "value factory cannot be nil"
	msgFactoryFailed       = "value factory failed"
	msgFactoryDisposed     = "atomic factory has been disposed"
	msgScopedRetryExceeded = "exceeded retry limit creating a lifetime for a scoped value"
	msgScopeDisposed       = "scope has been disposed"
	msgCacheClosed         = "cache has been closed"
	msgMaintenanceFailed   = "maintenance task failed"
	msgDisposeFailed       = "failed to dispose cached value"
	msgInternalError       = "internal cache error"
	msgPanicRecovered      = "panic recovered in cache operation"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidConfig creates an error for a configuration field that cannot be normalized
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrInvalidCapacity creates an error for invalid capacity
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrInvalidConcurrency creates an error for an invalid concurrency level
func NewErrInvalidConcurrency(level int) error {
	return errors.NewWithContext(ErrCodeInvalidConcurrency, msgInvalidConcurrency, map[string]interface{}{
		"provided_level":   level,
		"minimum_required": 1,
	})
}

// NewErrInvalidBufferSize creates an error for a buffer size that is not a power of two
func NewErrInvalidBufferSize(buffer string, size int) error {
	return errors.NewWithContext(ErrCodeInvalidBufferSize, msgInvalidBufferSize, map[string]interface{}{
		"buffer":        buffer,
		"provided_size": size,
	})
}

// NewErrNilCache creates an error when a decorator is built around a nil cache
func NewErrNilCache(decorator string) error {
	return errors.NewWithField(ErrCodeNilCache, msgNilCache, "decorator", decorator)
}

// =============================================================================
// FACTORY ERRORS
// =============================================================================

// NewErrInvalidFactory creates an error when the value factory is nil
func NewErrInvalidFactory(key interface{}) error {
	return errors.NewWithField(ErrCodeInvalidFactory, msgInvalidFactory, "key", fmt.Sprintf("%v", key))
}

// NewErrFactoryFailed wraps an error returned by a value factory
func NewErrFactoryFailed(key interface{}, cause error) error {
	return errors.Wrap(cause, ErrCodeFactoryFailed, msgFactoryFailed).
		WithContext("key", fmt.Sprintf("%v", key)).
		AsRetryable()
}

// NewErrFactoryDisposed creates an error when a disposed factory cell is asked for a value
func NewErrFactoryDisposed(key interface{}) error {
	return errors.NewWithField(ErrCodeFactoryDisposed, msgFactoryDisposed, "key", fmt.Sprintf("%v", key))
}

// =============================================================================
// SCOPED VALUE ERRORS
// =============================================================================

// NewErrScopedRetryExceeded creates an error when a scoped lookup keeps losing
// the race against eviction of the scope it found.
func NewErrScopedRetryExceeded(key interface{}, attempts int) error {
	return errors.NewWithContext(ErrCodeScopedRetryExceeded, msgScopedRetryExceeded, map[string]interface{}{
		"key":      fmt.Sprintf("%v", key),
		"attempts": attempts,
	}).WithSeverity("critical")
}

// NewErrScopeDisposed creates an error when a lifetime is requested from a disposed scope
func NewErrScopeDisposed() error {
	return errors.NewWithField(ErrCodeScopeDisposed, msgScopeDisposed, "state", "disposed")
}

// =============================================================================
// OPERATION ERRORS
// =============================================================================

// NewErrCacheClosed creates an error for operations on a closed cache
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// NewErrMaintenanceFailed wraps a failure raised by a scheduled maintenance task
func NewErrMaintenanceFailed(scheduler string, cause error) error {
	return errors.Wrap(cause, ErrCodeMaintenanceFailed, msgMaintenanceFailed).
		WithContext("scheduler", scheduler).
		AsRetryable()
}

// NewErrDisposeFailed aggregates the errors returned while closing cached values
func NewErrDisposeFailed(causes []error) error {
	if len(causes) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(causes))
	for _, c := range causes {
		msgs = append(msgs, c.Error())
	}
	return errors.Wrap(goerrors.Join(causes...), ErrCodeDisposeFailed, msgDisposeFailed).
		WithContext("count", len(causes)).
		WithContext("causes", strings.Join(msgs, "; ")).
		WithSeverity("warning")
}

// =============================================================================
// INTERNAL ERRORS
// =============================================================================

// NewErrInternal creates a generic internal error
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error when a panic is recovered
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsScopedRetryExceeded checks if error reports an exhausted scoped retry loop
func IsScopedRetryExceeded(err error) bool {
	return errors.HasCode(err, ErrCodeScopedRetryExceeded)
}

// IsScopeDisposed checks if error reports a disposed scope
func IsScopeDisposed(err error) bool {
	return errors.HasCode(err, ErrCodeScopeDisposed)
}

// IsFactoryDisposed checks if error reports a disposed atomic factory
func IsFactoryDisposed(err error) bool {
	return errors.HasCode(err, ErrCodeFactoryDisposed)
}

// IsCacheClosed checks if error reports a closed cache
func IsCacheClosed(err error) bool {
	return errors.HasCode(err, ErrCodeCacheClosed)
}

// IsPanicRecovered checks if error wraps a recovered panic
func IsPanicRecovered(err error) bool {
	return errors.HasCode(err, ErrCodePanicRecovered)
}

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInvalidCapacity, ErrCodeInvalidConcurrency,
		ErrCodeInvalidBufferSize, ErrCodeNilCache:
		return true
	}
	return false
}

// IsFactoryError checks if error is raised by value construction
func IsFactoryError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidFactory, ErrCodeFactoryFailed, ErrCodeFactoryDisposed:
		return true
	}
	return false
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var lfuErr *errors.Error
	if goerrors.As(err, &lfuErr) {
		return lfuErr.Context
	}
	return nil
}
