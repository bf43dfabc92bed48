package format

import "fmt"

// CellState wraps the signed length prefix of a cell. On disk a negative
// length marks an allocated cell and a positive one a free cell; the
// magnitude is the cell size including the prefix.
type CellState struct {
	Size int
	Free bool
}

// Used returns the state of an allocated cell of the given size.
func Used(size int) CellState { return CellState{Size: size} }

// Unused returns the state of a free cell of the given size.
func Unused(size int) CellState { return CellState{Size: size, Free: true} }

// CellStateOf interprets a raw length prefix.
func CellStateOf(raw int32) CellState {
	if raw < 0 {
		return CellState{Size: int(-int64(raw))}
	}
	return CellState{Size: int(raw), Free: true}
}

// Raw returns the on-disk length prefix.
func (s CellState) Raw() int32 {
	if s.Free {
		return int32(s.Size)
	}
	return -int32(s.Size)
}

// Allocated reports whether the cell is in use.
func (s CellState) Allocated() bool { return !s.Free }

func (s CellState) String() string {
	if s.Free {
		return fmt.Sprintf("free(%d)", s.Size)
	}
	return fmt.Sprintf("used(%d)", s.Size)
}

// ReadCellState decodes the length prefix at off.
func ReadCellState(b []byte, off int) (CellState, error) {
	if off < 0 || off+CellHeaderSize > len(b) {
		return CellState{}, fmt.Errorf("cell at %#x: %w", off, ErrTruncated)
	}
	return CellStateOf(ReadI32(b, off)), nil
}

// PutCellState writes s as the length prefix at off.
func PutCellState(b []byte, off int, s CellState) {
	PutI32(b, off, s.Raw())
}
