package format

// Align8 rounds n up to the cell alignment.
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(13) = 16
func Align8(n int) int {
	return (n + CellAlignmentMask) &^ CellAlignmentMask
}

// CellSizeFor returns the aligned size of a cell able to hold payload bytes,
// length prefix included.
func CellSizeFor(payload int) int {
	return Align8(payload + CellHeaderSize)
}
