// dispose.go: closing cached values that own resources
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package scopelfu

import "io"

// disposeValue closes v when it implements io.Closer. A panicking Close is
// reported as SCOPELFU_PANIC_RECOVERED.
func disposeValue[V any](v V) (err error) {
	closer, ok := any(v).(io.Closer)
	if !ok {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewErrPanicRecovered("dispose", r)
		}
	}()
	return closer.Close()
}

// sameValue reports whether a and b are the same comparable value.
// Values of uncomparable dynamic types are never the same.
func sameValue[V any](a, b V) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return any(a) == any(b)
}
