package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"encoding/binary"
)

// Region names. Any region not listed in knownRegions is named Unknown.
const (
	RegionBAT      = "BAT"
	RegionMetadata = "Metadata"
	Unknown        = "unknown"
)

var knownRegions = map[GUID]string{
	mustParseGUID("2DC27766-F623-4200-9D64-115E9BFD4A08"): RegionBAT,
	mustParseGUID("8B7CA206-4790-4B9A-B8FE-575F050F886E"): RegionMetadata,
}

// RegionName returns the name of a known region GUID, or Unknown.
func RegionName(g GUID) string {
	if name, ok := knownRegions[g]; ok {
		return name
	}
	return Unknown
}

// EnumRegions returns the region table entries in on-disk order.
//
//	header (16 bytes): signature "regi", checksum, entry count, reserved
//	entry  (32 bytes): GUID, file offset, length, required flag
//
// The checksum is not verified. If the primary table at 192 KiB has a bad
// signature the backup copy at 256 KiB is used.
func (s *Session) EnumRegions(ctx context.Context) ([]RegionEntry, error) {

	offset, count, err := s.regionTableHeader(ctx)
	if err != nil {
		return nil, err
	}

	if count > MaxTableEntries {
		return nil, &TableSizeError{
			Structure: "region table",
			Offset:    offset,
			Count:     int(count),
			Max:       MaxTableEntries,
		}
	}

	buf, err := s.r.Read(ctx, int(count)*tableEntrySize, offset+regionHeaderSize)
	if err != nil {
		return nil, err
	}

	regions := make([]RegionEntry, count)
	for i := range regions {
		regions[i] = parseRegionEntry(buf[i*tableEntrySize : (i+1)*tableEntrySize])
	}

	s.log.Debugf("region table at %#x: %d entries", offset, count)

	return regions, nil
}

func (s *Session) regionTableHeader(ctx context.Context) (int64, uint32, error) {

	hdr, err := s.r.Read(ctx, regionHeaderSize, RegionTableOffset)
	if err != nil {
		return 0, 0, err
	}

	if string(hdr[0:4]) == RegionTableSignature {
		return RegionTableOffset, binary.LittleEndian.Uint32(hdr[8:12]), nil
	}

	serr := &SignatureError{
		Structure: "region table",
		Offset:    RegionTableOffset,
		Expected:  RegionTableSignature,
		Actual:    hdr[0:4],
	}

	s.log.Debugf("%v; trying backup region table", serr)

	backup, err := s.r.Read(ctx, regionHeaderSize, BackupRegionTableOffset)
	if err != nil || string(backup[0:4]) != RegionTableSignature {
		return 0, 0, serr
	}

	s.log.Warnf("primary region table is damaged, using backup at %#x", BackupRegionTableOffset)

	return BackupRegionTableOffset, binary.LittleEndian.Uint32(backup[8:12]), nil
}

func parseRegionEntry(b []byte) RegionEntry {
	g := GUIDFromBytes(b[0:16])
	return RegionEntry{
		GUID:       g,
		Name:       RegionName(g),
		FileOffset: binary.LittleEndian.Uint64(b[16:24]),
		Length:     binary.LittleEndian.Uint32(b[24:28]),
		Required:   binary.LittleEndian.Uint32(b[28:32])&1 == 1,
	}
}

// FindRegion returns the first entry called name.
func FindRegion(regions []RegionEntry, name string) (RegionEntry, bool) {
	for _, r := range regions {
		if r.Name == name {
			return r, true
		}
	}
	return RegionEntry{}, false
}
