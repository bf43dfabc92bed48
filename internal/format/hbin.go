package format

import (
	"bytes"
	"fmt"
)

// HBINHeader is the decoded page header.
type HBINHeader struct {
	FileOffset uint32 // offset of the page relative to the first page
	Size       uint32 // size of the page, header included
}

// DecodeHBIN decodes a page header at the start of b.
func DecodeHBIN(b []byte) (HBINHeader, error) {
	if len(b) < HBINHeaderSize {
		return HBINHeader{}, fmt.Errorf("hbin: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:4], HBINSignature) {
		return HBINHeader{}, fmt.Errorf("hbin: %w", ErrSignatureMismatch)
	}
	return HBINHeader{
		FileOffset: ReadU32(b, HBINFileOffsetField),
		Size:       ReadU32(b, HBINSizeOffset),
	}, nil
}

// PutHBIN writes a page header at the start of b and zeroes the reserved bytes.
func PutHBIN(b []byte, h HBINHeader) {
	clear(b[:HBINHeaderSize])
	copy(b, HBINSignature)
	PutU32(b, HBINFileOffsetField, h.FileOffset)
	PutU32(b, HBINSizeOffset, h.Size)
}
