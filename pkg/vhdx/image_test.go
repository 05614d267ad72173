package vhdx

import (
	"context"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"
	"github.com/vorteil/vhdxinfo/pkg/vio"
)

const (
	testMetadataOffset = 1 << 20
	testRegionLength   = 1 << 20
	testItemBase       = 0x10000
)

var (
	testBATGUID      = mustParseGUID("2DC27766-F623-4200-9D64-115E9BFD4A08")
	testMetadataGUID = mustParseGUID("8B7CA206-4790-4B9A-B8FE-575F050F886E")
	testUnknownGUID  = mustParseGUID("0F0E0D0C-0B0A-0908-0706-050403020100")
	testDiskID       = mustParseGUID("6B4F5C2A-1D3E-4F60-8A9B-0C1D2E3F4A5B")
)

type testItem struct {
	guid  GUID
	data  []byte
	flags uint32
}

// testImage lays out a minimal VHDX: file signature, a region table at
// 192 KiB and a metadata region at 1 MiB whose payloads start 64 KiB in.
type testImage struct {
	signature         string
	regionSignature   string
	backupRegion      bool
	regions           []RegionEntry
	metadataSignature string
	items             []testItem
}

func newTestImage(items ...testItem) *testImage {
	return &testImage{
		signature:       FileSignature,
		regionSignature: RegionTableSignature,
		regions: []RegionEntry{
			{GUID: testBATGUID, FileOffset: 3 << 20, Length: testRegionLength, Required: true},
			{GUID: testMetadataGUID, FileOffset: testMetadataOffset, Length: testRegionLength, Required: true},
		},
		metadataSignature: MetadataTableSignature,
		items:             items,
	}
}

func (ti *testImage) writeRegionTable(b []byte, signature string) {
	copy(b, signature)
	binary.LittleEndian.PutUint32(b[8:12], uint32(len(ti.regions)))
	for i, r := range ti.regions {
		e := b[regionHeaderSize+i*tableEntrySize:]
		copy(e[0:16], r.GUID[:])
		binary.LittleEndian.PutUint64(e[16:24], r.FileOffset)
		binary.LittleEndian.PutUint32(e[24:28], r.Length)
		if r.Required {
			binary.LittleEndian.PutUint32(e[28:32], 1)
		}
	}
}

func (ti *testImage) bytes() []byte {

	buf := make([]byte, testMetadataOffset+testRegionLength)
	copy(buf, ti.signature)

	ti.writeRegionTable(buf[RegionTableOffset:], ti.regionSignature)
	if ti.backupRegion {
		ti.writeRegionTable(buf[BackupRegionTableOffset:], RegionTableSignature)
	}

	md := buf[testMetadataOffset:]
	copy(md, ti.metadataSignature)
	binary.LittleEndian.PutUint16(md[10:12], uint16(len(ti.items)))

	off := uint32(testItemBase)
	for i, item := range ti.items {
		e := md[(i+1)*tableEntrySize:]
		copy(e[0:16], item.guid[:])
		binary.LittleEndian.PutUint32(e[16:20], off)
		binary.LittleEndian.PutUint32(e[20:24], uint32(len(item.data)))
		binary.LittleEndian.PutUint32(e[24:28], item.flags)
		copy(md[off:], item.data)
		off += (uint32(len(item.data)) + 7) &^ 7
	}

	return buf
}

// itemOffset returns the absolute file offset of the i-th item payload.
func (ti *testImage) itemOffset(i int) int64 {
	off := int64(testItemBase)
	for _, item := range ti.items[:i] {
		off += int64((len(item.data) + 7) &^ 7)
	}
	return testMetadataOffset + off
}

func (ti *testImage) writeFile(t *testing.T, dir, name string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, ti.bytes(), 0644))
	return path
}

func itemGUID(name string) GUID {
	for _, item := range items {
		if item.Name == name {
			return item.GUID
		}
	}
	panic("unknown item " + name)
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func utf16le(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(u))
	for i, x := range u {
		binary.LittleEndian.PutUint16(b[2*i:], x)
	}
	return b
}

func fileParametersItem(blockSize, flags uint32) testItem {
	return testItem{
		guid:  itemGUID(ItemFileParameters),
		data:  append(le32(blockSize), le32(flags)...),
		flags: 0x6,
	}
}

func sizeItem(size uint64) testItem {
	return testItem{guid: itemGUID(ItemVirtualDiskSize), data: le64(size), flags: 0x6}
}

func diskIDItem(g GUID) testItem {
	return testItem{guid: itemGUID(ItemVirtualDiskID), data: append([]byte(nil), g[:]...), flags: 0x6}
}

func logicalSectorItem(v uint32) testItem {
	return testItem{guid: itemGUID(ItemLogicalSectorSize), data: le32(v), flags: 0x6}
}

func physicalSectorItem(v uint32) testItem {
	return testItem{guid: itemGUID(ItemPhysicalSectorSize), data: le32(v), flags: 0x6}
}

func vendorItem(data []byte) testItem {
	return testItem{guid: itemGUID(ItemVendorMetadata), data: data, flags: 0x1}
}

// parentLocatorPayload builds a locator with keys and values stored after
// the entry array.
func parentLocatorPayload(locatorType GUID, kv [][2]string) []byte {

	head := make([]byte, parentLocatorHeaderSize+len(kv)*parentLocatorEntrySize)
	copy(head, locatorType[:])
	binary.LittleEndian.PutUint16(head[18:20], uint16(len(kv)))

	var text []byte
	for i, pair := range kv {
		e := head[parentLocatorHeaderSize+i*parentLocatorEntrySize:]
		k := utf16le(pair[0])
		v := utf16le(pair[1])
		binary.LittleEndian.PutUint32(e[0:4], uint32(len(head)+len(text)))
		binary.LittleEndian.PutUint16(e[8:10], uint16(len(k)))
		text = append(text, k...)
		binary.LittleEndian.PutUint32(e[4:8], uint32(len(head)+len(text)))
		binary.LittleEndian.PutUint16(e[10:12], uint16(len(v)))
		text = append(text, v...)
	}

	return append(head, text...)
}

func parentLocatorItem(kv [][2]string) testItem {
	return testItem{
		guid:  itemGUID(ItemParentLocator),
		data:  parentLocatorPayload(mustParseGUID("B04AEFB7-D19E-4A81-B789-25B8E9445913"), kv),
		flags: 0x6,
	}
}

func standardItems(flags uint32, size uint64) []testItem {
	return []testItem{
		fileParametersItem(32<<20, flags),
		sizeItem(size),
		diskIDItem(testDiskID),
		logicalSectorItem(512),
		physicalSectorItem(4096),
	}
}

type readCall struct {
	length int
	offset int64
}

// memReader is an in-memory vio.Reader that records every call. Its WriteAt
// exists only to catch code that type-asserts its way to writing.
type memReader struct {
	data []byte

	lock   sync.Mutex
	reads  []readCall
	writes int
	closes int
}

var _ vio.Reader = (*memReader)(nil)

func newMemReader(data []byte) *memReader {
	return &memReader{data: data}
}

func (m *memReader) Read(ctx context.Context, length int, offset int64) ([]byte, error) {

	m.lock.Lock()
	m.reads = append(m.reads, readCall{length: length, offset: offset})
	m.lock.Unlock()

	if offset < 0 || offset+int64(length) > int64(len(m.data)) {
		return nil, &vio.IOError{Source: "mem", Op: "read", Offset: offset, Length: length, Err: vio.ErrShortRead}
	}

	p := make([]byte, length)
	copy(p, m.data[offset:])
	return p, nil
}

func (m *memReader) WriteAt(p []byte, off int64) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.writes++
	return 0, errors.New("memReader is read-only")
}

func (m *memReader) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closes++
	return nil
}

func (m *memReader) calls() []readCall {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]readCall(nil), m.reads...)
}

func (m *memReader) readAt(offset int64) bool {
	for _, c := range m.calls() {
		if c.offset == offset {
			return true
		}
	}
	return false
}

func loadTestImage(t *testing.T, ti *testImage) (*Session, *memReader) {
	m := newMemReader(ti.bytes())
	s, err := Load(context.Background(), m, nil)
	require.NoError(t, err)
	return s, m
}
