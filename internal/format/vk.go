package format

import (
	"bytes"
	"fmt"
)

// VKRecord is a decoded value node.
//
//	Offset  Size  Field
//	0x00    2     'v' 'k'
//	0x02    2     Name length
//	0x04    4     Data length (bit 31: data inline)
//	0x08    4     Data cell, or the inline data itself
//	0x0C    4     Value type
//	0x10    2     Flags (bit 0: compressed name)
//	0x12    2     Spare
//	0x14    n     Name bytes
type VKRecord struct {
	DataLength uint32
	DataOffset uint32
	Type       uint32
	Flags      uint16
	Spare      uint16
	NameRaw    []byte
}

// NameIsCompressed reports whether the name is stored in 8-bit form.
func (vk VKRecord) NameIsCompressed() bool {
	return vk.Flags&VKFlagCompressedName != 0
}

// Name decodes the value name. The unnamed value decodes to "".
func (vk VKRecord) Name() (string, error) {
	return DecodeName(vk.NameRaw, vk.NameIsCompressed())
}

// Inline reports whether the data lives inside the record.
func (vk VKRecord) Inline() bool {
	return vk.DataLength&VKDataInline != 0
}

// InlineInType reports the special encoding where a DWORD sits in the type field.
func (vk VKRecord) InlineInType() bool {
	return vk.DataLength == VKInlineDWORDInType
}

// Len returns the logical data length.
func (vk VKRecord) Len() int {
	if vk.InlineInType() {
		return 4
	}
	return int(vk.DataLength & VKDataLengthMask)
}

// Size is the number of payload bytes the record occupies.
func (vk VKRecord) Size() int {
	return VKFixedSize + len(vk.NameRaw)
}

// DecodeVK decodes a value node payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKFixedSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKFixedSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}
	nameLen := int(ReadU16(b, VKNameLenOffset))
	if VKFixedSize+nameLen > len(b) {
		return VKRecord{}, fmt.Errorf("vk name (%d bytes): %w", nameLen, ErrTruncated)
	}
	return VKRecord{
		DataLength: ReadU32(b, VKDataLenOffset),
		DataOffset: ReadU32(b, VKDataOffOffset),
		Type:       ReadU32(b, VKTypeOffset),
		Flags:      ReadU16(b, VKFlagsOffset),
		Spare:      ReadU16(b, VKSpareOffset),
		NameRaw:    bytes.Clone(b[VKFixedSize : VKFixedSize+nameLen]),
	}, nil
}

// EncodeVK writes vk into b, which must hold at least vk.Size() bytes.
func EncodeVK(b []byte, vk VKRecord) error {
	if len(b) < vk.Size() {
		return fmt.Errorf("vk encode: %w (have %d, need %d)", ErrTruncated, len(b), vk.Size())
	}
	if len(vk.NameRaw) > MaxNameLength {
		return fmt.Errorf("vk name length %d: %w", len(vk.NameRaw), ErrSanityLimit)
	}
	copy(b, VKSignature)
	PutU16(b, VKNameLenOffset, uint16(len(vk.NameRaw)))
	PutU32(b, VKDataLenOffset, vk.DataLength)
	PutU32(b, VKDataOffOffset, vk.DataOffset)
	PutU32(b, VKTypeOffset, vk.Type)
	PutU16(b, VKFlagsOffset, vk.Flags)
	PutU16(b, VKSpareOffset, vk.Spare)
	copy(b[VKFixedSize:], vk.NameRaw)
	return nil
}
