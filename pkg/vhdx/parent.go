package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"
)

// Parent locator layout.
const (
	parentLocatorHeaderSize = 20
	parentLocatorEntrySize  = 12
)

// Well-known parent locator keys.
const (
	ParentLinkage     = "parent_linkage"
	ParentLinkage2    = "parent_linkage2"
	RelativePath      = "relative_path"
	VolumePath        = "volume_path"
	AbsoluteWin32Path = "absolute_win32_path"
)

// ParentLocator is the decoded Parent Locator item of a differencing disk.
type ParentLocator struct {
	Type    GUID              `json:"type" yaml:"type"`
	Entries map[string]string `json:"entries" yaml:"entries"`
}

// ParentPath returns the first path hint present, preferring the relative
// path, or "" if there is none.
func (pl *ParentLocator) ParentPath() string {
	for _, k := range []string{RelativePath, VolumePath, AbsoluteWin32Path} {
		if v, ok := pl.Entries[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// DecodeParentLocator decodes a Parent Locator payload:
//
//	header (20 bytes): locator type GUID, reserved uint16, key/value count uint16
//	entry  (12 bytes): key offset, value offset (uint32), key length, value length (uint16)
//
// Key and value offsets are relative to the start of the payload and point at
// UTF-16LE text.
func DecodeParentLocator(p []byte) (*ParentLocator, error) {

	if err := needBytes(p, parentLocatorHeaderSize); err != nil {
		return nil, err
	}

	count := int(binary.LittleEndian.Uint16(p[18:20]))
	if err := needBytes(p, parentLocatorHeaderSize+count*parentLocatorEntrySize); err != nil {
		return nil, err
	}

	pl := &ParentLocator{
		Type:    GUIDFromBytes(p),
		Entries: make(map[string]string, count),
	}

	for i := 0; i < count; i++ {
		e := p[parentLocatorHeaderSize+i*parentLocatorEntrySize:]

		key, err := utf16Field(p, binary.LittleEndian.Uint32(e[0:4]), binary.LittleEndian.Uint16(e[8:10]))
		if err != nil {
			return nil, errors.Wrapf(err, "parent locator entry %d key", i)
		}

		value, err := utf16Field(p, binary.LittleEndian.Uint32(e[4:8]), binary.LittleEndian.Uint16(e[10:12]))
		if err != nil {
			return nil, errors.Wrapf(err, "parent locator entry %d value", i)
		}

		pl.Entries[key] = value
	}

	return pl, nil
}

func decodeParentLocator(p []byte) (*Info, error) {
	pl, err := DecodeParentLocator(p)
	if err != nil {
		return nil, err
	}
	return &Info{ParentLocator: pl}, nil
}

func utf16Field(p []byte, offset uint32, length uint16) (string, error) {

	end := uint64(offset) + uint64(length)
	if end > uint64(len(p)) {
		return "", errors.Wrapf(ErrTruncated, "%d bytes at offset %d exceed item length %d", length, offset, len(p))
	}

	if length%2 != 0 {
		return "", errors.Errorf("odd UTF-16 length %d", length)
	}

	return decodeUTF16(p[offset:end]), nil
}

// decodeUTF16 decodes little-endian UTF-16. A trailing odd byte is ignored.
func decodeUTF16(data []byte) string {
	x := make([]uint16, len(data)/2)
	for i := range x {
		x[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return string(utf16.Decode(x))
}
