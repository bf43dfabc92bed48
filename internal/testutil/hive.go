// Package testutil builds synthetic hives for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshuapare/ntreg/internal/format"
)

// Fixed positions of the records every built hive starts with, relative to
// the first page.
const (
	RootRef     = 0x20
	SecurityRef = 0x78
	FirstFree   = 0xA8

	RootName = "ROOT"
	PageSize = format.HBINAlignment
)

// Epoch is the timestamp stamped into built hives.
var Epoch = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// minimal self-relative security descriptor: revision 1, SE_SELF_RELATIVE |
// SE_DACL_PRESENT, no owner, group, or ACLs.
var descriptor = []byte{
	0x01, 0x00, 0x04, 0x80,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Layout describes a hive to build. The zero value is one page.
type Layout struct {
	Pages    int
	FileName string
	Trailing []byte // appended after the last page
}

// Build returns a valid hive: a root key with a security node in the first
// page, the remainder of every page as one free cell.
func Build(l Layout) []byte {
	pages := max(l.Pages, 1)
	data := make([]byte, format.HeaderSize+pages*PageSize, format.HeaderSize+pages*PageSize+len(l.Trailing))

	for i := 0; i < pages; i++ {
		off := format.HiveDataBase + i*PageSize
		format.PutHBIN(data[off:], format.HBINHeader{FileOffset: uint32(i * PageSize), Size: PageSize})
		putCell(data, format.HBINHeaderSize+i*PageSize, format.Unused(PageSize-format.HBINHeaderSize))
	}

	ft := format.TimeToFiletime(Epoch)
	root := format.NKRecord{
		Flags:         format.NKTypeRoot,
		LastWriteRaw:  ft,
		Parent:        format.InvalidOffset,
		SubkeyList:    format.InvalidOffset,
		VolSubkeyList: format.InvalidOffset,
		ValueList:     format.InvalidOffset,
		Security:      SecurityRef,
		ClassName:     format.InvalidOffset,
		NameRaw:       []byte(RootName),
	}
	putCell(data, RootRef, format.Used(SecurityRef-RootRef))
	if err := format.EncodeNK(payload(data, RootRef), root); err != nil {
		panic(err)
	}
	sk := format.SKRecord{Flink: SecurityRef, Blink: SecurityRef, RefCount: 1, Descriptor: descriptor}
	putCell(data, SecurityRef, format.Used(FirstFree-SecurityRef))
	if err := format.EncodeSK(payload(data, SecurityRef), sk); err != nil {
		panic(err)
	}
	putCell(data, FirstFree, format.Unused(PageSize-FirstFree))

	name, err := format.EncodeUTF16(l.FileName)
	if err != nil {
		panic(err)
	}
	hdr := format.Header{
		PrimarySeq:   1,
		SecondarySeq: 1,
		LastWriteRaw: ft,
		MajorVersion: 1,
		MinorVersion: 5,
		Format:       1,
		RootCell:     RootRef,
		DataSize:     uint32(pages * PageSize),
		Cluster:      1,
		FileNameRaw:  name,
	}
	hdr.Put(data)
	format.PutU32(data, format.REGFCheckSumOffset, format.Checksum(data))

	return append(data, l.Trailing...)
}

// NewHive is Build with a test helper signature.
func NewHive(t testing.TB, pages int) []byte {
	t.Helper()
	return Build(Layout{Pages: pages, FileName: "SYNTHETIC"})
}

// WriteFile stores data under a temp directory and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Abs converts a reference into an offset in the built buffer.
func Abs(ref int) int { return format.HiveDataBase + ref }

func putCell(data []byte, ref int, s format.CellState) {
	format.PutCellState(data, Abs(ref), s)
}

func payload(data []byte, ref int) []byte {
	return data[Abs(ref)+format.CellHeaderSize:]
}
