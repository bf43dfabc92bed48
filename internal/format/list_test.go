package format

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodeIndexLI(t *testing.T) {
	b := make([]byte, 4+2*4)
	copy(b, LISignature)
	binary.LittleEndian.PutUint16(b[2:], 2)
	binary.LittleEndian.PutUint32(b[4:], 0x100)
	binary.LittleEndian.PutUint32(b[8:], 0x200)
	rec, err := DecodeIndex(b)
	if err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}
	if rec.Kind != IndexLI || len(rec.Entries) != 2 || rec.Entries[1].Ref != 0x200 {
		t.Fatalf("unexpected result: %+v", rec)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, kind := range []IndexKind{IndexLF, IndexLH, IndexLI, IndexRI} {
		in := IndexRecord{Kind: kind, Entries: []IndexEntry{{Ref: 0x20, Tag: 7}, {Ref: 0x90, Tag: 9}}}
		out := make([]byte, in.Size())
		if err := EncodeIndex(out, in); err != nil {
			t.Fatalf("%s: EncodeIndex: %v", kind, err)
		}
		if IndexKindOf(out) != kind {
			t.Fatalf("%s: signature not written", kind)
		}
		got, err := DecodeIndex(out)
		if err != nil {
			t.Fatalf("%s: DecodeIndex: %v", kind, err)
		}
		if len(got.Entries) != 2 || got.Entries[1].Ref != 0x90 {
			t.Fatalf("%s: entries = %+v", kind, got.Entries)
		}
		wantTag := uint32(0)
		if kind.EntrySize() == LFEntrySize {
			wantTag = 9
		}
		if got.Entries[1].Tag != wantTag {
			t.Fatalf("%s: tag = %d want %d", kind, got.Entries[1].Tag, wantTag)
		}
	}
}

func TestDecodeIndexErrors(t *testing.T) {
	b := make([]byte, 8)
	copy(b, "xx")
	if _, err := DecodeIndex(b); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	copy(b, LFSignature)
	binary.LittleEndian.PutUint16(b[2:], 3)
	if _, err := DecodeIndex(b); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
}

func TestValueList(t *testing.T) {
	b := make([]byte, 3*4)
	if err := EncodeValueList(b, []uint32{0x10, 0x20, 0x30}); err != nil {
		t.Fatalf("EncodeValueList: %v", err)
	}
	vals, err := DecodeValueList(b, 3)
	if err != nil {
		t.Fatalf("DecodeValueList: %v", err)
	}
	if len(vals) != 3 || vals[2] != 0x30 {
		t.Fatalf("unexpected values: %v", vals)
	}
	if _, err := DecodeValueList(b, 4); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
}
