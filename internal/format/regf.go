package format

import (
	"bytes"
	"fmt"
)

// Header is the decoded regf base block. Layout (little-endian):
//
//	Offset  Size  Field
//	0x000   4     'r' 'e' 'g' 'f'
//	0x004   4     Primary sequence number
//	0x008   4     Secondary sequence number
//	0x00C   8     Last written (FILETIME)
//	0x014   4     Major version
//	0x018   4     Minor version
//	0x01C   4     File type
//	0x020   4     File format
//	0x024   4     Root cell (relative to the first page)
//	0x028   4     Size of all pages
//	0x02C   4     Clustering factor
//	0x030   64    File name (UTF-16LE, not terminated)
//	0x1FC   4     XOR checksum of the preceding 508 bytes
type Header struct {
	PrimarySeq   uint32
	SecondarySeq uint32
	LastWriteRaw uint64
	MajorVersion uint32
	MinorVersion uint32
	Type         uint32
	Format       uint32
	RootCell     uint32
	DataSize     uint32
	Cluster      uint32
	FileNameRaw  []byte
	Checksum     uint32
}

// DecodeHeader decodes the base block at the start of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("regf: %w (have %d, need %d)", ErrTruncated, len(b), HeaderSize)
	}
	if !bytes.Equal(b[:4], REGFSignature) {
		return Header{}, fmt.Errorf("regf: %w", ErrSignatureMismatch)
	}
	name := make([]byte, REGFFileNameSize)
	copy(name, b[REGFFileNameOffset:REGFFileNameOffset+REGFFileNameSize])
	return Header{
		PrimarySeq:   ReadU32(b, REGFPrimarySeqOffset),
		SecondarySeq: ReadU32(b, REGFSecondarySeqOffset),
		LastWriteRaw: ReadU64(b, REGFTimeStampOffset),
		MajorVersion: ReadU32(b, REGFMajorVersionOffset),
		MinorVersion: ReadU32(b, REGFMinorVersionOffset),
		Type:         ReadU32(b, REGFTypeOffset),
		Format:       ReadU32(b, REGFFormatOffset),
		RootCell:     ReadU32(b, REGFRootCellOffset),
		DataSize:     ReadU32(b, REGFDataSizeOffset),
		Cluster:      ReadU32(b, REGFClusterOffset),
		FileNameRaw:  name,
		Checksum:     ReadU32(b, REGFCheckSumOffset),
	}, nil
}

// Put writes the header fields into b, which must hold a full base block.
// Bytes the header does not model are left untouched. The checksum field is
// written as stored in h; call Checksum afterwards to refresh it.
func (h Header) Put(b []byte) {
	copy(b[REGFSignatureOffset:], REGFSignature)
	PutU32(b, REGFPrimarySeqOffset, h.PrimarySeq)
	PutU32(b, REGFSecondarySeqOffset, h.SecondarySeq)
	PutU64(b, REGFTimeStampOffset, h.LastWriteRaw)
	PutU32(b, REGFMajorVersionOffset, h.MajorVersion)
	PutU32(b, REGFMinorVersionOffset, h.MinorVersion)
	PutU32(b, REGFTypeOffset, h.Type)
	PutU32(b, REGFFormatOffset, h.Format)
	PutU32(b, REGFRootCellOffset, h.RootCell)
	PutU32(b, REGFDataSizeOffset, h.DataSize)
	PutU32(b, REGFClusterOffset, h.Cluster)
	name := b[REGFFileNameOffset : REGFFileNameOffset+REGFFileNameSize]
	clear(name)
	copy(name, h.FileNameRaw)
	PutU32(b, REGFCheckSumOffset, h.Checksum)
}

// Checksum computes the base block checksum: the XOR of the first 127 dwords.
// The values 0 and 0xFFFFFFFF are reserved and adjusted the way Windows does.
func Checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < REGFChecksumDwords; i++ {
		sum ^= ReadU32(b, i*4)
	}
	switch sum {
	case 0:
		return 1
	case 0xFFFFFFFF:
		return 0xFFFFFFFE
	}
	return sum
}
