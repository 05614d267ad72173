package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"encoding/binary"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Item describes a known metadata item and how to decode it. Decode returns
// a partial Info holding only the fields the item provides.
type Item struct {
	Name     string
	GUID     GUID
	Required bool
	Decode   func(p []byte) (*Info, error)
}

// Known metadata item names.
const (
	ItemFileParameters     = "File Parameters"
	ItemVirtualDiskSize    = "Virtual Disk Size"
	ItemVirtualDiskID      = "Virtual Disk ID"
	ItemLogicalSectorSize  = "Logical Sector Size"
	ItemPhysicalSectorSize = "Physical Sector Size"
	ItemParentLocator      = "Parent Locator"
	ItemVendorMetadata     = "HyperOne Metadata"
)

// items is ordered: when two items set the same Info field the later one
// wins.
var items = []Item{
	{
		Name:     ItemFileParameters,
		GUID:     mustParseGUID("CAA16737-FA36-4D43-B3B6-33F0AA44E76B"),
		Required: true,
		Decode:   decodeFileParameters,
	},
	{
		Name:     ItemVirtualDiskSize,
		GUID:     mustParseGUID("2FA54224-CD1B-4876-B211-5DBED83BF4B8"),
		Required: true,
		Decode:   decodeVirtualDiskSize,
	},
	{
		Name:   ItemVirtualDiskID,
		GUID:   mustParseGUID("BECA12AB-B2E6-4523-93EF-C309E000C746"),
		Decode: decodeVirtualDiskID,
	},
	{
		Name:     ItemLogicalSectorSize,
		GUID:     mustParseGUID("8141BF1D-A96F-4709-BA47-F233A8FAAB5F"),
		Required: true,
		Decode:   decodeLogicalSectorSize,
	},
	{
		Name:     ItemPhysicalSectorSize,
		GUID:     mustParseGUID("CDA348C7-445D-4471-9CC9-E9885251C556"),
		Required: true,
		Decode:   decodePhysicalSectorSize,
	},
	{
		Name:   ItemParentLocator,
		GUID:   mustParseGUID("A8D35F2D-B30B-454D-ABF7-D3D84834AB0C"),
		Decode: decodeParentLocator,
	},
	{
		Name:   ItemVendorMetadata,
		GUID:   mustParseGUID("76C39310-D201-4E90-92EC-59D85640B187"),
		Decode: decodeVendorMetadata,
	},
}

var itemNames = func() map[GUID]string {
	m := make(map[GUID]string, len(items))
	for _, item := range items {
		m[item.GUID] = item.Name
	}
	return m
}()

// KnownItems returns a copy of the item registry in declaration order.
func KnownItems() []Item {
	list := make([]Item, len(items))
	copy(list, items)
	return list
}

// ItemName returns the name of a known item GUID, or Unknown.
func ItemName(g GUID) string {
	if name, ok := itemNames[g]; ok {
		return name
	}
	return Unknown
}

func needBytes(p []byte, n int) error {
	if len(p) < n {
		return errors.Wrapf(ErrTruncated, "need %d bytes, have %d", n, len(p))
	}
	return nil
}

// DecodeFileParameters decodes the File Parameters payload:
// block size (uint32), then flags (bit 0 leave blocks allocated, bit 1 has
// parent).
func DecodeFileParameters(p []byte) (FileParameters, error) {
	if err := needBytes(p, 8); err != nil {
		return FileParameters{}, err
	}
	flags := binary.LittleEndian.Uint32(p[4:8])
	return FileParameters{
		BlockSize:            binary.LittleEndian.Uint32(p[0:4]),
		LeaveBlocksAllocated: flags&0x1 != 0,
		HasParent:            flags&0x2 != 0,
	}, nil
}

func decodeFileParameters(p []byte) (*Info, error) {
	fp, err := DecodeFileParameters(p)
	if err != nil {
		return nil, err
	}
	return &Info{
		Type:      fp.Type(),
		BlockSize: fp.BlockSize,
		HasParent: fp.HasParent,
	}, nil
}

func decodeVirtualDiskSize(p []byte) (*Info, error) {
	if err := needBytes(p, 8); err != nil {
		return nil, err
	}
	return &Info{Size: binary.LittleEndian.Uint64(p)}, nil
}

func decodeVirtualDiskID(p []byte) (*Info, error) {
	if err := needBytes(p, GUIDSize); err != nil {
		return nil, err
	}
	return &Info{Identifier: GUIDFromBytes(p).String()}, nil
}

func decodeLogicalSectorSize(p []byte) (*Info, error) {
	if err := needBytes(p, 4); err != nil {
		return nil, err
	}
	return &Info{LogicalSectorSize: binary.LittleEndian.Uint32(p)}, nil
}

func decodePhysicalSectorSize(p []byte) (*Info, error) {
	if err := needBytes(p, 4); err != nil {
		return nil, err
	}
	return &Info{PhysicalSectorSize: binary.LittleEndian.Uint32(p)}, nil
}

// The vendor blob is UTF-16LE JSON filling the entry's declared length;
// trailing NULs are padding.
func decodeVendorMetadata(p []byte) (*Info, error) {

	s := strings.TrimRight(decodeUTF16(p), "\x00")

	var m map[string]interface{}
	err := json.Unmarshal([]byte(s), &m)
	if err != nil {
		return nil, errors.Wrap(err, "parsing vendor metadata")
	}

	return &Info{Metadata: m}, nil
}
