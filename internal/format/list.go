package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/ntreg/internal/buf"
)

// IndexKind names one of the four subkey index encodings.
type IndexKind uint8

const (
	IndexUnknown IndexKind = iota
	IndexLF
	IndexLH
	IndexLI
	IndexRI
)

func (k IndexKind) String() string {
	switch k {
	case IndexLF:
		return "lf"
	case IndexLH:
		return "lh"
	case IndexLI:
		return "li"
	case IndexRI:
		return "ri"
	}
	return fmt.Sprintf("index(%d)", uint8(k))
}

// Signature returns the two signature bytes of k.
func (k IndexKind) Signature() []byte {
	switch k {
	case IndexLF:
		return LFSignature
	case IndexLH:
		return LHSignature
	case IndexLI:
		return LISignature
	case IndexRI:
		return RISignature
	}
	return nil
}

// EntrySize returns the per-entry size of k.
func (k IndexKind) EntrySize() int {
	if k == IndexLF || k == IndexLH {
		return LFEntrySize
	}
	return RefEntrySize
}

// Leaf reports whether k points at key nodes directly.
func (k IndexKind) Leaf() bool {
	return k == IndexLF || k == IndexLH || k == IndexLI
}

// IndexKindOf inspects the signature at the start of b.
func IndexKindOf(b []byte) IndexKind {
	if len(b) < SignatureSize {
		return IndexUnknown
	}
	sig := b[:SignatureSize]
	switch {
	case bytes.Equal(sig, LFSignature):
		return IndexLF
	case bytes.Equal(sig, LHSignature):
		return IndexLH
	case bytes.Equal(sig, LISignature):
		return IndexLI
	case bytes.Equal(sig, RISignature):
		return IndexRI
	}
	return IndexUnknown
}

// IndexEntry is one slot of an index block. Tag is only meaningful for lf
// (the first four name bytes) and lh (the name hash).
type IndexEntry struct {
	Ref uint32
	Tag uint32
}

// IndexRecord is a decoded index block of any kind.
type IndexRecord struct {
	Kind    IndexKind
	Entries []IndexEntry
}

// IndexSize returns the payload size of a block of kind holding n entries.
func IndexSize(kind IndexKind, n int) int {
	return IndexHeaderSize + n*kind.EntrySize()
}

// Size returns the payload size of r.
func (r IndexRecord) Size() int {
	return IndexSize(r.Kind, len(r.Entries))
}

// DecodeIndex decodes an lf, lh, li or ri block.
func DecodeIndex(b []byte) (IndexRecord, error) {
	if len(b) < IndexHeaderSize {
		return IndexRecord{}, fmt.Errorf("index: %w", ErrTruncated)
	}
	kind := IndexKindOf(b)
	if kind == IndexUnknown {
		return IndexRecord{}, fmt.Errorf("index %q: %w", b[:SignatureSize], ErrSignatureMismatch)
	}
	count := int(ReadU16(b, IdxCountOffset))
	if _, err := buf.ListEnd(len(b), IdxListOffset, count, kind.EntrySize()); err != nil {
		return IndexRecord{}, fmt.Errorf("%s index (%d entries): %w: %w", kind, count, ErrTruncated, err)
	}
	rec := IndexRecord{Kind: kind, Entries: make([]IndexEntry, count)}
	for i := 0; i < count; i++ {
		off := IdxListOffset + i*kind.EntrySize()
		rec.Entries[i].Ref = ReadU32(b, off)
		if kind.EntrySize() == LFEntrySize {
			rec.Entries[i].Tag = ReadU32(b, off+4)
		}
	}
	return rec, nil
}

// EncodeIndex writes r into b, which must hold r.Size() bytes.
func EncodeIndex(b []byte, r IndexRecord) error {
	sig := r.Kind.Signature()
	if sig == nil {
		return fmt.Errorf("index encode: kind %s: %w", r.Kind, ErrSignatureMismatch)
	}
	if len(r.Entries) > 0xFFFF {
		return fmt.Errorf("index encode: %d entries: %w", len(r.Entries), ErrSanityLimit)
	}
	if len(b) < r.Size() {
		return fmt.Errorf("index encode: %w (have %d, need %d)", ErrTruncated, len(b), r.Size())
	}
	copy(b, sig)
	PutU16(b, IdxCountOffset, uint16(len(r.Entries)))
	for i, e := range r.Entries {
		off := IdxListOffset + i*r.Kind.EntrySize()
		PutU32(b, off, e.Ref)
		if r.Kind.EntrySize() == LFEntrySize {
			PutU32(b, off+4, e.Tag)
		}
	}
	return nil
}

// DecodeValueList reads count cell references from a value list payload.
func DecodeValueList(b []byte, count int) ([]uint32, error) {
	if count > MaxValueCount {
		return nil, fmt.Errorf("value list count %d: %w", count, ErrSanityLimit)
	}
	if _, err := buf.ListEnd(len(b), 0, count, RefEntrySize); err != nil {
		return nil, fmt.Errorf("value list (%d entries): %w: %w", count, ErrTruncated, err)
	}
	refs := make([]uint32, count)
	for i := range refs {
		refs[i] = ReadU32(b, i*RefEntrySize)
	}
	return refs, nil
}

// EncodeValueList writes refs into b.
func EncodeValueList(b []byte, refs []uint32) error {
	if len(b) < len(refs)*RefEntrySize {
		return fmt.Errorf("value list encode: %w", ErrTruncated)
	}
	for i, r := range refs {
		PutU32(b, i*RefEntrySize, r)
	}
	return nil
}
