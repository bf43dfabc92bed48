package hive

import (
	"fmt"

	"github.com/joshuapare/ntreg/internal/format"
)

// Ref is a cell reference: the offset of a cell's length prefix relative to
// the first page.
type Ref uint32

// NoRef is the empty reference stored in unused offset fields.
const NoRef Ref = format.InvalidOffset

// Valid reports whether r refers to something.
func (r Ref) Valid() bool { return r != NoRef }

func (r Ref) String() string {
	if r == NoRef {
		return "none"
	}
	return fmt.Sprintf("%#x", uint32(r))
}

// toAbs and toRef are the only places where references and buffer offsets
// are converted. Everything else goes through them.
func toAbs(r Ref) int   { return format.HiveDataBase + int(r) }
func toRef(off int) Ref { return Ref(off - format.HiveDataBase) }

// abs validates r as a cell position inside the page area and returns its
// buffer offset.
func (h *Hive) abs(r Ref) (int, error) {
	if r == NoRef {
		return 0, corrupt(r, "reference", fmt.Errorf("empty reference"))
	}
	off := toAbs(r)
	if off < format.HiveDataBase+format.HBINHeaderSize || off+format.CellHeaderSize > h.end {
		return 0, corruptf(r, "reference", "outside page area [%#x, %#x)", format.HBINHeaderSize, h.end-format.HiveDataBase)
	}
	return off, nil
}

// cellAt reads the state of the cell at r and bounds it by its page.
func (h *Hive) cellAt(r Ref) (int, format.CellState, error) {
	off, err := h.abs(r)
	if err != nil {
		return 0, format.CellState{}, err
	}
	p, ok := h.pageAt(off)
	if !ok {
		return 0, format.CellState{}, corruptf(r, "cell", "not inside any page")
	}
	st, err := format.ReadCellState(h.data, off)
	if err != nil {
		return 0, format.CellState{}, corrupt(r, "cell", err)
	}
	if st.Size == 0 {
		return 0, format.CellState{}, &RecordError{Ref: r, What: "cell", Err: ErrZeroLengthCell}
	}
	if st.Size < format.CellHeaderSize || off+st.Size > p.end() {
		return 0, format.CellState{}, corruptf(r, "cell", "size %d overruns page ending at %#x", st.Size, uint32(toRef(p.end())))
	}
	return off, st, nil
}

// payload returns a read view of the payload of the allocated cell at r.
func (h *Hive) payload(r Ref) ([]byte, error) {
	off, st, err := h.cellAt(r)
	if err != nil {
		return nil, err
	}
	if st.Free {
		return nil, corruptf(r, "cell", "expected allocated cell, found %s", st)
	}
	return h.data[off+format.CellHeaderSize : off+st.Size : off+st.Size], nil
}

// payloadMut returns a journaled writable view of the first n payload bytes
// of the allocated cell at r.
func (h *Hive) payloadMut(r Ref, n int) ([]byte, error) {
	p, err := h.payload(r)
	if err != nil {
		return nil, err
	}
	if n > len(p) {
		return nil, corruptf(r, "cell", "payload of %d bytes cannot hold %d", len(p), n)
	}
	off, _ := h.abs(r)
	return h.mut(off+format.CellHeaderSize, n), nil
}
