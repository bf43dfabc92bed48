// Package buf contains bounds-checked helpers shared by the record decoders.
package buf

import "encoding/binary"

// LE16 reads a little-endian uint16 from b, or 0 when b is too short.
func LE16(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// LE64 reads a little-endian uint64 from b, or 0 when b is too short.
func LE64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// U32 reads a uint32 in the given byte order, or 0 when b is too short.
// Registry dwords come in both orders.
func U32(order binary.ByteOrder, b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return order.Uint32(b)
}

// PutU32 stores v in the given byte order. It reports false, writing
// nothing, when b is too short.
func PutU32(order binary.ByteOrder, b []byte, v uint32) bool {
	if len(b) < 4 {
		return false
	}
	order.PutUint32(b, v)
	return true
}
