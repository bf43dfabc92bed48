// Package format holds the fixed-layout record codecs of the NT registry hive
// format. Decoders take a payload slice and return owned values; encoders
// write those values back. Nothing here knows about cell references or the
// page that contains a record: resolving offsets is the caller's job.
package format

var (
	// REGFSignature opens every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// HBINSignature opens every page.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	NKSignature = []byte{'n', 'k'}
	VKSignature = []byte{'v', 'k'}
	SKSignature = []byte{'s', 'k'}

	// LFSignature, LHSignature and LISignature identify the direct subkey
	// index blocks. LF carries a four byte name prefix per entry, LH a name
	// hash, LI nothing but the child reference.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}

	// RISignature identifies the indirect index whose entries point at
	// LF/LH/LI blocks.
	RISignature = []byte{'r', 'i'}
)

const (
	// HeaderSize is the size of the regf base block.
	HeaderSize = 0x1000

	// HiveDataBase is the absolute file offset of the first page. Every cell
	// reference stored in the hive is relative to it.
	HiveDataBase = 0x1000

	// HBINHeaderSize is the size of a page header.
	HBINHeaderSize = 0x20

	// HBINAlignment is the granularity of page sizes.
	HBINAlignment = 0x1000

	// HBINDataSize is the payload room of a single 4 KiB page.
	HBINDataSize = HBINAlignment - HBINHeaderSize

	// CellHeaderSize is the signed length prefix of every cell.
	CellHeaderSize = 4

	// CellAlignment is the cell size granularity, length prefix included.
	CellAlignment     = 8
	CellAlignmentMask = CellAlignment - 1

	// MinCellSize is the smallest cell that can stand on its own.
	MinCellSize = CellAlignment

	// SignatureSize is the size of two-letter record signatures.
	SignatureSize = 2

	// InvalidOffset marks an empty reference field.
	InvalidOffset = 0xFFFFFFFF
)

// Page header layout.
//
//	Offset  Size  Field
//	0x00    4     'h' 'b' 'i' 'n'
//	0x04    4     Offset of this page from the first page
//	0x08    4     Size of the page (offset to the next page)
//	0x0C    8     Reserved
//	0x14    8     Timestamp
//	0x1C    4     Spare
const (
	HBINSignatureOffset = 0x00
	HBINFileOffsetField = 0x04
	HBINSizeOffset      = 0x08
	HBINTimestampOffset = 0x14
)

// Base block layout. Only the fields the engine reads or maintains are named.
const (
	REGFSignatureOffset    = 0x000
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFTimeStampOffset    = 0x00C
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFTypeOffset         = 0x01C
	REGFFormatOffset       = 0x020
	REGFRootCellOffset     = 0x024
	REGFDataSizeOffset     = 0x028
	REGFClusterOffset      = 0x02C
	REGFFileNameOffset     = 0x030
	REGFFileNameSize       = 64
	REGFCheckSumOffset     = 0x1FC

	// REGFChecksumDwords is the number of dwords XORed into the checksum.
	REGFChecksumDwords = REGFCheckSumOffset / 4
)

// NK layout, offsets from the start of the cell payload.
const (
	NKFlagsOffset          = 0x02
	NKLastWriteOffset      = 0x04
	NKAccessBitsOffset     = 0x0C
	NKParentOffset         = 0x10
	NKSubkeyCountOffset    = 0x14
	NKVolSubkeyCountOffset = 0x18
	NKSubkeyListOffset     = 0x1C
	NKVolSubkeyListOffset  = 0x20
	NKValueCountOffset     = 0x24
	NKValueListOffset      = 0x28
	NKSecurityOffset       = 0x2C
	NKClassNameOffset      = 0x30
	NKMaxNameLenOffset     = 0x34
	NKMaxClassLenOffset    = 0x38
	NKMaxValueNameOffset   = 0x3C
	NKMaxValueDataOffset   = 0x40
	NKWorkVarOffset        = 0x44
	NKNameLenOffset        = 0x48
	NKClassLenOffset       = 0x4A
	NKNameOffset           = 0x4C

	NKFixedSize = NKNameOffset
)

// NK flags. The legacy tools write whole type words: 0x2C for the root key
// (hive entry, no delete, compressed name) and 0x20 for ordinary keys.
const (
	NKFlagVolatile       = 0x0001
	NKFlagHiveExit       = 0x0002
	NKFlagHiveEntry      = 0x0004
	NKFlagNoDelete       = 0x0008
	NKFlagSymLink        = 0x0010
	NKFlagCompressedName = 0x0020

	NKTypeRoot   = NKFlagHiveEntry | NKFlagNoDelete | NKFlagCompressedName
	NKTypeNormal = NKFlagCompressedName
)

// VK layout, offsets from the start of the cell payload.
const (
	VKNameLenOffset = 0x02
	VKDataLenOffset = 0x04
	VKDataOffOffset = 0x08
	VKTypeOffset    = 0x0C
	VKFlagsOffset   = 0x10
	VKSpareOffset   = 0x12
	VKNameOffset    = 0x14

	VKFixedSize = VKNameOffset

	VKFlagCompressedName = 0x0001

	// VKDataInline is the top bit of the data length. When set the data
	// lives in the data offset field instead of a separate cell.
	VKDataInline     = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF

	// VKInlineDWORDInType is the exact data length some SAM and SECURITY
	// values carry: inline flag with a zero length, meaning the four data
	// bytes sit in the type field.
	VKInlineDWORDInType = VKDataInline
)

// SK layout.
const (
	SKReservedOffset         = 0x02
	SKFlinkOffset            = 0x04
	SKBlinkOffset            = 0x08
	SKReferenceCountOffset   = 0x0C
	SKDescriptorLengthOffset = 0x10
	SKDescriptorOffset       = 0x14

	SKFixedSize = SKDescriptorOffset
)

// Index layout shared by lf, lh, li and ri.
//
//	Offset  Size  Field
//	0x00    2     signature
//	0x02    2     entry count
//	0x04    n*e   entries (e = 8 for lf/lh, 4 for li/ri)
const (
	IdxCountOffset = 0x02
	IdxListOffset  = 0x04

	IndexHeaderSize = IdxListOffset

	// LFEntrySize is the size of an lf/lh entry: reference plus tag.
	LFEntrySize = 8

	// RefEntrySize is the size of an li/ri entry and of a value list slot.
	RefEntrySize = 4
)

// Sanity limits applied while decoding untrusted records.
const (
	MaxSubkeyCount = 1 << 20
	MaxValueCount  = 1 << 20
	MaxNameLength  = 0xFFFF
)
