package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"fmt"

	"github.com/pkg/errors"
)

// Decode causes wrapped by MetadataDecodeError.
var (
	ErrTruncated = errors.New("item payload too short")
)

// SignatureError reports a magic value mismatch at the start of the file, the
// region table or the metadata table.
type SignatureError struct {
	Structure string
	Offset    int64
	Expected  string
	Actual    []byte
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("wrong %s signature at offset %d: expected %q, got %q", e.Structure, e.Offset, e.Expected, e.Actual)
}

// RegionNotFoundError reports that the region table has no entry with the
// given name.
type RegionNotFoundError struct {
	Name string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("region %s not found", e.Name)
}

// MissingMetadataError reports that a required metadata item has no entry in
// the metadata table.
type MissingMetadataError struct {
	Item string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("metadata: \"%s\" not found", e.Item)
}

// MetadataDecodeError reports that a present metadata item could not be
// decoded.
type MetadataDecodeError struct {
	GUID GUID
	Item string
	Err  error
}

func (e *MetadataDecodeError) Error() string {
	return fmt.Sprintf("metadata: decoding \"%s\" (%s): %v", e.Item, e.GUID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MetadataDecodeError) Unwrap() error {
	return e.Err
}

// TableSizeError reports a table header declaring more entries than the
// format permits.
type TableSizeError struct {
	Structure string
	Offset    int64
	Count     int
	Max       int
}

func (e *TableSizeError) Error() string {
	return fmt.Sprintf("%s at offset %d declares %d entries (limit %d)", e.Structure, e.Offset, e.Count, e.Max)
}

// ItemSizeError reports a metadata entry declaring a payload longer than
// MaxItemLength. Nothing is read for such an entry.
type ItemSizeError struct {
	GUID   GUID
	Item   string
	Length uint32
	Max    int
}

func (e *ItemSizeError) Error() string {
	return fmt.Sprintf("metadata: \"%s\" (%s) declares %d bytes (limit %d)", e.Item, e.GUID, e.Length, e.Max)
}
