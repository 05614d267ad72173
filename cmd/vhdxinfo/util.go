package main

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/sisatech/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/vorteil/vhdxinfo/pkg/vhdx"
)

// NumbersMode determines which numbers format a PrintableSize should render to.
var NumbersMode int

// SetNumbersMode parses s and sets NumbersMode accordingly.
func SetNumbersMode(s string) error {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	switch s {
	case "", "short":
		NumbersMode = 0
	case "dec", "decimal":
		NumbersMode = 1
	case "hex", "hexadecimal":
		NumbersMode = 2
	default:
		return errors.New("numbers mode must be one of 'dec', 'hex', or 'short'")
	}
	return nil
}

// PrintableSize is a wrapper around uint64 to alter its string formatting behaviour.
type PrintableSize uint64

// String returns a string representation of the PrintableSize, formatted according to the global NumbersMode.
func (c PrintableSize) String() string {
	switch NumbersMode {
	case 0:
		return bytefmt.ByteSize(uint64(c))
	case 1:
		return fmt.Sprintf("%d", uint64(c))
	case 2:
		return fmt.Sprintf("%#x", uint64(c))
	default:
		panic("invalid NumbersMode")
	}
}

// PlainTable prints data in a grid, handling alignment automatically. The
// first row is the header.
func PlainTable(w io.Writer, vals [][]string) {
	if len(vals) == 0 {
		panic(errors.New("no rows provided"))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(vals[0])
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	for i := 1; i < len(vals); i++ {
		table.Append(vals[i])
	}

	table.Render()
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func printYAML(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// filterEntries keeps the entries whose name or GUID matches any pattern. No
// patterns keeps everything.
func filterEntries(entries []vhdx.MetadataEntry, patterns []string) ([]vhdx.MetadataEntry, error) {

	if len(patterns) == 0 {
		return entries, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter '%s'", p)
		}
		globs = append(globs, g)
	}

	out := make([]vhdx.MetadataEntry, 0, len(entries))
	for _, e := range entries {
		for _, g := range globs {
			if g.Match(e.Name) || g.Match(e.GUID.String()) {
				out = append(out, e)
				break
			}
		}
	}

	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func infoRows(info *vhdx.Info) [][]string {

	vals := [][]string{
		{"FIELD", "VALUE"},
		{"Type", info.Type.String()},
		{"Size", PrintableSize(info.Size).String()},
		{"Block Size", PrintableSize(info.BlockSize).String()},
		{"Logical Sector Size", PrintableSize(info.LogicalSectorSize).String()},
		{"Physical Sector Size", PrintableSize(info.PhysicalSectorSize).String()},
	}

	if info.Identifier != "" {
		vals = append(vals, []string{"Identifier", info.Identifier})
	}

	if info.ParentLocator != nil {
		vals = append(vals, []string{"Parent", info.ParentLocator.ParentPath()})
		keys := make([]string, 0, len(info.ParentLocator.Entries))
		for k := range info.ParentLocator.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vals = append(vals, []string{"  " + k, info.ParentLocator.Entries[k]})
		}
	}

	if len(info.Metadata) > 0 {
		keys := make([]string, 0, len(info.Metadata))
		for k := range info.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vals = append(vals, []string{"Metadata." + k, fmt.Sprintf("%v", info.Metadata[k])})
		}
	}

	return vals
}

func regionRows(regions []vhdx.RegionEntry) [][]string {
	vals := [][]string{{"NAME", "GUID", "OFFSET", "LENGTH", "REQUIRED"}}
	for _, r := range regions {
		vals = append(vals, []string{
			r.Name,
			r.GUID.String(),
			PrintableSize(r.FileOffset).String(),
			PrintableSize(r.Length).String(),
			yesNo(r.Required),
		})
	}
	return vals
}

func metadataRows(entries []vhdx.MetadataEntry) [][]string {
	vals := [][]string{{"NAME", "GUID", "OFFSET", "LENGTH", "USER", "VIRTUAL DISK", "REQUIRED"}}
	for _, e := range entries {
		vals = append(vals, []string{
			e.Name,
			e.GUID.String(),
			PrintableSize(e.Offset).String(),
			PrintableSize(e.Length).String(),
			yesNo(e.IsUser),
			yesNo(e.IsVirtualDisk),
			yesNo(e.IsRequired),
		})
	}
	return vals
}
