package format

import (
	"bytes"
	"fmt"
)

// NKRecord is a decoded key node. Layout of the cell payload:
//
//	Offset  Size  Field
//	0x00    2     'n' 'k'
//	0x02    2     Flags / type word (0x2C root, 0x20 normal)
//	0x04    8     Last write time (FILETIME)
//	0x0C    4     Access bits
//	0x10    4     Parent cell
//	0x14    4     Number of subkeys
//	0x18    4     Number of volatile subkeys
//	0x1C    4     Subkey index cell
//	0x20    4     Volatile subkey index cell
//	0x24    4     Number of values
//	0x28    4     Value list cell
//	0x2C    4     Security cell
//	0x30    4     Class name cell
//	0x34    4     Max subkey name length
//	0x38    4     Max subkey class length
//	0x3C    4     Max value name length
//	0x40    4     Max value data length
//	0x44    4     Work var
//	0x48    2     Name length
//	0x4A    2     Class name length
//	0x4C    n     Name bytes
type NKRecord struct {
	Flags           uint16
	LastWriteRaw    uint64
	AccessBits      uint32
	Parent          uint32
	SubkeyCount     uint32
	VolSubkeyCount  uint32
	SubkeyList      uint32
	VolSubkeyList   uint32
	ValueCount      uint32
	ValueList       uint32
	Security        uint32
	ClassName       uint32
	MaxNameLen      uint32
	MaxClassLen     uint32
	MaxValueNameLen uint32
	MaxValueDataLen uint32
	WorkVar         uint32
	ClassLength     uint16
	NameRaw         []byte
}

// NameIsCompressed reports whether the name is stored in 8-bit form.
func (nk NKRecord) NameIsCompressed() bool {
	return nk.Flags&NKFlagCompressedName != 0
}

// IsRoot reports whether the node carries the hive entry flag.
func (nk NKRecord) IsRoot() bool {
	return nk.Flags&NKFlagHiveEntry != 0
}

// Name decodes the node's name.
func (nk NKRecord) Name() (string, error) {
	return DecodeName(nk.NameRaw, nk.NameIsCompressed())
}

// Size is the number of payload bytes the record occupies.
func (nk NKRecord) Size() int {
	return NKFixedSize + len(nk.NameRaw)
}

// DecodeNK decodes a key node payload. The name is copied out of b.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKFixedSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKFixedSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}
	nk := NKRecord{
		Flags:           ReadU16(b, NKFlagsOffset),
		LastWriteRaw:    ReadU64(b, NKLastWriteOffset),
		AccessBits:      ReadU32(b, NKAccessBitsOffset),
		Parent:          ReadU32(b, NKParentOffset),
		SubkeyCount:     ReadU32(b, NKSubkeyCountOffset),
		VolSubkeyCount:  ReadU32(b, NKVolSubkeyCountOffset),
		SubkeyList:      ReadU32(b, NKSubkeyListOffset),
		VolSubkeyList:   ReadU32(b, NKVolSubkeyListOffset),
		ValueCount:      ReadU32(b, NKValueCountOffset),
		ValueList:       ReadU32(b, NKValueListOffset),
		Security:        ReadU32(b, NKSecurityOffset),
		ClassName:       ReadU32(b, NKClassNameOffset),
		MaxNameLen:      ReadU32(b, NKMaxNameLenOffset),
		MaxClassLen:     ReadU32(b, NKMaxClassLenOffset),
		MaxValueNameLen: ReadU32(b, NKMaxValueNameOffset),
		MaxValueDataLen: ReadU32(b, NKMaxValueDataOffset),
		WorkVar:         ReadU32(b, NKWorkVarOffset),
		ClassLength:     ReadU16(b, NKClassLenOffset),
	}
	if nk.SubkeyCount > MaxSubkeyCount {
		return NKRecord{}, fmt.Errorf("nk subkey count %d exceeds limit %d: %w",
			nk.SubkeyCount, MaxSubkeyCount, ErrSanityLimit)
	}
	if nk.ValueCount > MaxValueCount {
		return NKRecord{}, fmt.Errorf("nk value count %d exceeds limit %d: %w",
			nk.ValueCount, MaxValueCount, ErrSanityLimit)
	}
	nameLen := int(ReadU16(b, NKNameLenOffset))
	if NKFixedSize+nameLen > len(b) {
		return NKRecord{}, fmt.Errorf("nk name (%d bytes): %w", nameLen, ErrTruncated)
	}
	nk.NameRaw = bytes.Clone(b[NKFixedSize : NKFixedSize+nameLen])
	return nk, nil
}

// EncodeNK writes nk into b, which must hold at least nk.Size() bytes.
func EncodeNK(b []byte, nk NKRecord) error {
	if len(b) < nk.Size() {
		return fmt.Errorf("nk encode: %w (have %d, need %d)", ErrTruncated, len(b), nk.Size())
	}
	if len(nk.NameRaw) > MaxNameLength {
		return fmt.Errorf("nk name length %d: %w", len(nk.NameRaw), ErrSanityLimit)
	}
	copy(b, NKSignature)
	PutU16(b, NKFlagsOffset, nk.Flags)
	PutU64(b, NKLastWriteOffset, nk.LastWriteRaw)
	PutU32(b, NKAccessBitsOffset, nk.AccessBits)
	PutU32(b, NKParentOffset, nk.Parent)
	PutU32(b, NKSubkeyCountOffset, nk.SubkeyCount)
	PutU32(b, NKVolSubkeyCountOffset, nk.VolSubkeyCount)
	PutU32(b, NKSubkeyListOffset, nk.SubkeyList)
	PutU32(b, NKVolSubkeyListOffset, nk.VolSubkeyList)
	PutU32(b, NKValueCountOffset, nk.ValueCount)
	PutU32(b, NKValueListOffset, nk.ValueList)
	PutU32(b, NKSecurityOffset, nk.Security)
	PutU32(b, NKClassNameOffset, nk.ClassName)
	PutU32(b, NKMaxNameLenOffset, nk.MaxNameLen)
	PutU32(b, NKMaxClassLenOffset, nk.MaxClassLen)
	PutU32(b, NKMaxValueNameOffset, nk.MaxValueNameLen)
	PutU32(b, NKMaxValueDataOffset, nk.MaxValueDataLen)
	PutU32(b, NKWorkVarOffset, nk.WorkVar)
	PutU16(b, NKNameLenOffset, uint16(len(nk.NameRaw)))
	PutU16(b, NKClassLenOffset, nk.ClassLength)
	copy(b[NKFixedSize:], nk.NameRaw)
	return nil
}
