package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	opOpen  = "open"
	opProbe = "probe"
	opRead  = "read"
	opClose = "close"
)

// Causes carried by IOError.
var (
	ErrClosed       = errors.New("reader is closed")
	ErrShortRead    = errors.New("short read")
	ErrInvalidRange = errors.New("invalid byte range")
)

// IOError reports a failed open, read or close against a source. A read that
// returns fewer bytes than requested wraps ErrShortRead.
type IOError struct {
	Source string
	Op     string
	Offset int64
	Length int
	Err    error
}

func (e *IOError) Error() string {
	if e.Op == opRead {
		return fmt.Sprintf("%s: reading %d bytes at offset %d: %v", e.Source, e.Length, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error {
	return e.Err
}

// RangeUnsupportedError is returned when a remote source does not answer a
// byte-range request with 206 Partial Content. Redirect responses are
// reported as this error wrapped in an *IOError, since redirects are not
// followed.
type RangeUnsupportedError struct {
	URL      string
	Status   int
	Location string
}

func (e *RangeUnsupportedError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: HTTP range requests not supported: redirected (%d) to %s", e.URL, e.Status, e.Location)
	}
	return fmt.Sprintf("%s: HTTP range requests not supported: status %d", e.URL, e.Status)
}
