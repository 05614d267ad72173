package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
)

// Reader is a random-access, read-only view of an image source. Every Read
// is all-or-nothing: it returns exactly length bytes or an error, and nothing
// read is cached between calls.
type Reader interface {

	// Read returns length bytes starting at offset. Fewer bytes than
	// requested is an error (*IOError wrapping ErrShortRead).
	Read(ctx context.Context, length int, offset int64) ([]byte, error)

	// Close releases the provider's resources. Calling it more than once
	// is harmless.
	Close() error
}

func checkRange(source string, length int, offset int64) error {
	if length < 0 || offset < 0 {
		return &IOError{
			Source: source,
			Op:     opRead,
			Offset: offset,
			Length: length,
			Err:    ErrInvalidRange,
		}
	}
	return nil
}
