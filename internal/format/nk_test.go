package format

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodeNKCompressedName(t *testing.T) {
	buf := make([]byte, NKFixedSize+4)
	copy(buf, NKSignature)
	binary.LittleEndian.PutUint16(buf[NKFlagsOffset:], NKTypeRoot)
	binary.LittleEndian.PutUint64(buf[NKLastWriteOffset:], 0xfeedface)
	binary.LittleEndian.PutUint32(buf[NKParentOffset:], InvalidOffset)
	binary.LittleEndian.PutUint32(buf[NKSubkeyCountOffset:], 1)
	binary.LittleEndian.PutUint32(buf[NKSubkeyListOffset:], 0x200)
	binary.LittleEndian.PutUint32(buf[NKValueCountOffset:], 2)
	binary.LittleEndian.PutUint32(buf[NKValueListOffset:], 0x300)
	binary.LittleEndian.PutUint16(buf[NKNameLenOffset:], 4)
	copy(buf[NKNameOffset:], "ROOT")

	nk, err := DecodeNK(buf)
	if err != nil {
		t.Fatalf("DecodeNK: %v", err)
	}
	name, err := nk.Name()
	if err != nil || name != "ROOT" || !nk.NameIsCompressed() || !nk.IsRoot() {
		t.Fatalf("unexpected name: %q %v %+v", name, err, nk)
	}
	if nk.SubkeyCount != 1 || nk.ValueCount != 2 || nk.SubkeyList != 0x200 || nk.ValueList != 0x300 {
		t.Fatalf("unexpected counts: %+v", nk)
	}
}

func TestDecodeNKTruncated(t *testing.T) {
	buf := make([]byte, NKFixedSize)
	copy(buf, NKSignature)
	binary.LittleEndian.PutUint16(buf[NKNameLenOffset:], 10)
	if _, err := DecodeNK(buf); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}
	if _, err := DecodeNK(buf[:2]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation error, got %v", err)
	}
}

func TestDecodeNKSignature(t *testing.T) {
	buf := make([]byte, NKFixedSize)
	copy(buf, VKSignature)
	if _, err := DecodeNK(buf); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestDecodeNKSanityLimit(t *testing.T) {
	buf := make([]byte, NKFixedSize)
	copy(buf, NKSignature)
	binary.LittleEndian.PutUint32(buf[NKSubkeyCountOffset:], MaxSubkeyCount+1)
	if _, err := DecodeNK(buf); !errors.Is(err, ErrSanityLimit) {
		t.Fatalf("expected sanity error, got %v", err)
	}
}

func TestEncodeNKRoundTrip(t *testing.T) {
	in := NKRecord{
		Flags:        NKTypeNormal,
		LastWriteRaw: 0x01D0000000000000,
		Parent:       0x20,
		SubkeyList:   InvalidOffset,
		ValueList:    InvalidOffset,
		Security:     0x80,
		ClassName:    InvalidOffset,
		NameRaw:      []byte("Software"),
	}
	out := make([]byte, in.Size())
	if err := EncodeNK(out, in); err != nil {
		t.Fatalf("EncodeNK: %v", err)
	}
	got, err := DecodeNK(out)
	if err != nil {
		t.Fatalf("DecodeNK: %v", err)
	}
	if got.Parent != in.Parent || got.Security != in.Security || string(got.NameRaw) != "Software" ||
		got.SubkeyList != InvalidOffset || got.Flags != NKTypeNormal {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if err := EncodeNK(out[:NKFixedSize], in); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected short buffer to fail, got %v", err)
	}
}
