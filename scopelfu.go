// scopelfu.go: library-wide constants
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package scopelfu

const (
	// Version of the scopelfu library
	Version = "v0.1.0-dev"

	// DefaultCapacity is the default maximum number of entries
	DefaultCapacity = 10_000

	// DefaultReadBufferSize is the capacity of each read buffer stripe
	DefaultReadBufferSize = 128

	// MaxWriteBufferSize caps the write buffer derived from capacity
	MaxWriteBufferSize = 128

	// DefaultWindowRatio is the initial share of capacity given to the admission window
	DefaultWindowRatio = 0.01 // 1%

	// DefaultProtectedRatio is the share of the main space given to the protected segment
	DefaultProtectedRatio = 0.80

	// MaxScopedRetry bounds how many times a scoped lookup races a concurrent eviction
	MaxScopedRetry = 5

	// writeBufferRetries is how many times a writer retries a full write buffer
	// before running maintenance itself.
	writeBufferRetries = 100
)
