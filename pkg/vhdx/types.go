package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DiskType classifies a VHDX image.
type DiskType string

// All valid DiskType values.
const (
	DynamicDisk      DiskType = "dynamic"
	FixedDisk        DiskType = "fixed"
	DifferencingDisk DiskType = "differencing"
)

var diskTypes = map[DiskType]bool{
	DynamicDisk:      true,
	FixedDisk:        true,
	DifferencingDisk: true,
}

func (x DiskType) String() string {
	return string(x)
}

// MarshalText implements encoding.TextMarshaler.
func (x DiskType) MarshalText() (text []byte, err error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *DiskType) UnmarshalText(text []byte) error {
	var err error
	*x, err = ParseDiskType(string(text))
	if err != nil {
		return err
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (x DiskType) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (x *DiskType) UnmarshalJSON(data []byte) error {
	s := string(data)
	s = strings.Trim(s, "\"")
	var err error
	*x, err = ParseDiskType(s)
	if err != nil {
		return err
	}
	return nil
}

// ParseDiskType resolves a string into a DiskType.
func ParseDiskType(s string) (DiskType, error) {

	original := s

	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	x := DiskType(s)
	if !diskTypes[x] {
		return "", fmt.Errorf("unrecognized disk type '%s'", original)
	}

	return x, nil
}

// FileParameters is the decoded File Parameters metadata item.
type FileParameters struct {
	BlockSize            uint32
	LeaveBlocksAllocated bool
	HasParent            bool
}

// Type derives the disk type: a parent makes it differencing, otherwise
// preallocated blocks make it fixed, otherwise it is dynamic.
func (fp FileParameters) Type() DiskType {
	switch {
	case fp.HasParent:
		return DifferencingDisk
	case fp.LeaveBlocksAllocated:
		return FixedDisk
	default:
		return DynamicDisk
	}
}

// RegionEntry is one entry of the region table.
type RegionEntry struct {
	GUID       GUID   `json:"guid" yaml:"guid"`
	Name       string `json:"name" yaml:"name"`
	FileOffset uint64 `json:"fileOffset" yaml:"fileOffset"`
	Length     uint32 `json:"length" yaml:"length"`
	Required   bool   `json:"required" yaml:"required"`
}

// MetadataEntry is one entry of a metadata table. Offset is relative to the
// start of the region holding the table.
type MetadataEntry struct {
	GUID          GUID   `json:"guid" yaml:"guid"`
	Name          string `json:"name" yaml:"name"`
	Offset        uint32 `json:"offset" yaml:"offset"`
	Length        uint32 `json:"length" yaml:"length"`
	IsUser        bool   `json:"isUser" yaml:"isUser"`
	IsVirtualDisk bool   `json:"isVirtualDisk" yaml:"isVirtualDisk"`
	IsRequired    bool   `json:"isRequired" yaml:"isRequired"`
}

// Info is the merged result of decoding every known metadata item present in
// an image.
type Info struct {
	Type               DiskType               `json:"type" yaml:"type"`
	Size               uint64                 `json:"size" yaml:"size"`
	BlockSize          uint32                 `json:"blockSize,omitempty" yaml:"blockSize,omitempty"`
	Identifier         string                 `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	LogicalSectorSize  uint32                 `json:"logicalSectorSize,omitempty" yaml:"logicalSectorSize,omitempty"`
	PhysicalSectorSize uint32                 `json:"physicalSectorSize,omitempty" yaml:"physicalSectorSize,omitempty"`
	HasParent          bool                   `json:"hasParent,omitempty" yaml:"hasParent,omitempty"`
	ParentLocator      *ParentLocator         `json:"parentLocator,omitempty" yaml:"parentLocator,omitempty"`
	Metadata           map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
