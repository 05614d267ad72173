package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"encoding/binary"
)

// LoadMetadataTable returns the entries of the metadata table at base, in
// on-disk order. Entries for unknown items are kept and named Unknown.
//
//	header (32 bytes): signature "metadata", reserved, entry count, reserved
//	entry  (32 bytes): item GUID, offset, length, flags, reserved
//
// The count comes from a first 16-byte read; the table is then read again
// from base, header included, and the signature checked on that copy.
func (s *Session) LoadMetadataTable(ctx context.Context, base int64) ([]MetadataEntry, error) {

	hdr, err := s.r.Read(ctx, regionHeaderSize, base)
	if err != nil {
		return nil, err
	}

	count := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if count > MaxTableEntries {
		return nil, &TableSizeError{
			Structure: "metadata table",
			Offset:    base,
			Count:     count,
			Max:       MaxTableEntries,
		}
	}

	buf, err := s.r.Read(ctx, (count+1)*tableEntrySize, base)
	if err != nil {
		return nil, err
	}

	if string(buf[0:8]) != MetadataTableSignature {
		return nil, &SignatureError{
			Structure: "metadata table",
			Offset:    base,
			Expected:  MetadataTableSignature,
			Actual:    buf[0:8],
		}
	}

	entries := make([]MetadataEntry, count)
	for i := range entries {
		off := (i + 1) * tableEntrySize
		entries[i] = parseMetadataEntry(buf[off : off+tableEntrySize])
	}

	s.log.Debugf("metadata table at %#x: %d entries", base, count)

	return entries, nil
}

func parseMetadataEntry(b []byte) MetadataEntry {
	g := GUIDFromBytes(b[0:16])
	flags := binary.LittleEndian.Uint32(b[24:28])
	return MetadataEntry{
		GUID:          g,
		Name:          ItemName(g),
		Offset:        binary.LittleEndian.Uint32(b[16:20]),
		Length:        binary.LittleEndian.Uint32(b[20:24]),
		IsUser:        flags&0x1 != 0,
		IsVirtualDisk: flags&0x2 != 0,
		IsRequired:    flags&0x4 != 0,
	}
}

// FindEntry returns the first entry for item g.
func FindEntry(entries []MetadataEntry, g GUID) (MetadataEntry, bool) {
	for _, e := range entries {
		if e.GUID == g {
			return e, true
		}
	}
	return MetadataEntry{}, false
}

// ReadItem returns the raw payload of a metadata entry in region. It works
// for unknown items too. Entries longer than MaxItemLength are rejected
// without reading.
func (s *Session) ReadItem(ctx context.Context, region RegionEntry, entry MetadataEntry) ([]byte, error) {

	if entry.Length > MaxItemLength {
		return nil, &ItemSizeError{
			GUID:   entry.GUID,
			Item:   entry.Name,
			Length: entry.Length,
			Max:    MaxItemLength,
		}
	}

	return s.r.Read(ctx, int(entry.Length), int64(region.FileOffset)+int64(entry.Offset))
}
