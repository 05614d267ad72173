package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GUIDSize is the on-disk width of a GUID.
const GUIDSize = 16

// GUID is a Windows GUID in on-disk byte order: the first three fields are
// little-endian, the last eight bytes are stored as-is.
type GUID [GUIDSize]byte

// GUIDFromBytes copies the first 16 bytes of b. b must hold at least 16 bytes.
func GUIDFromBytes(b []byte) GUID {
	var g GUID
	copy(g[:], b[:GUIDSize])
	return g
}

// ParseGUID parses the canonical text form (as produced by String) back into
// on-disk byte order.
func ParseGUID(s string) (GUID, error) {

	var g GUID

	u, err := uuid.Parse(s)
	if err != nil {
		return g, fmt.Errorf("invalid GUID '%s': %w", s, err)
	}

	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:], u[8:])

	return g, nil
}

func mustParseGUID(s string) GUID {
	g, err := ParseGUID(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String renders g as XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX in upper case.
func (g GUID) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%X-%X",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:16])
}

// MarshalText implements encoding.TextMarshaler.
func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GUID) UnmarshalText(text []byte) error {
	var err error
	*g, err = ParseGUID(string(text))
	return err
}
