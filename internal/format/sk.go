package format

import (
	"bytes"
	"fmt"
)

// SKRecord is a decoded security node. The descriptor is kept opaque.
//
//	Offset  Size  Field
//	0x00    2     's' 'k'
//	0x02    2     Reserved
//	0x04    4     Next security cell
//	0x08    4     Previous security cell
//	0x0C    4     Reference count
//	0x10    4     Descriptor length
//	0x14    n     Descriptor
type SKRecord struct {
	Reserved   uint16
	Flink      uint32
	Blink      uint32
	RefCount   uint32
	Descriptor []byte
}

// DecodeSK decodes a security node payload.
func DecodeSK(b []byte) (SKRecord, error) {
	if len(b) < SKFixedSize {
		return SKRecord{}, fmt.Errorf("sk: %w (have %d, need %d)", ErrTruncated, len(b), SKFixedSize)
	}
	if !bytes.Equal(b[:SignatureSize], SKSignature) {
		return SKRecord{}, fmt.Errorf("sk: %w", ErrSignatureMismatch)
	}
	n := int(ReadU32(b, SKDescriptorLengthOffset))
	if n < 0 || SKFixedSize+n > len(b) {
		return SKRecord{}, fmt.Errorf("sk descriptor (%d bytes): %w", n, ErrTruncated)
	}
	return SKRecord{
		Reserved:   ReadU16(b, SKReservedOffset),
		Flink:      ReadU32(b, SKFlinkOffset),
		Blink:      ReadU32(b, SKBlinkOffset),
		RefCount:   ReadU32(b, SKReferenceCountOffset),
		Descriptor: bytes.Clone(b[SKFixedSize : SKFixedSize+n]),
	}, nil
}

// EncodeSK writes sk into b.
func EncodeSK(b []byte, sk SKRecord) error {
	if len(b) < SKFixedSize+len(sk.Descriptor) {
		return fmt.Errorf("sk encode: %w", ErrTruncated)
	}
	copy(b, SKSignature)
	PutU16(b, SKReservedOffset, sk.Reserved)
	PutU32(b, SKFlinkOffset, sk.Flink)
	PutU32(b, SKBlinkOffset, sk.Blink)
	PutU32(b, SKReferenceCountOffset, sk.RefCount)
	PutU32(b, SKDescriptorLengthOffset, uint32(len(sk.Descriptor)))
	copy(b[SKFixedSize:], sk.Descriptor)
	return nil
}
