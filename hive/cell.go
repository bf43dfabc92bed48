package hive

import (
	"io"

	"github.com/joshuapare/ntreg/internal/format"
)

// Cell is one entry of a page's cell run.
type Cell struct {
	Ref   Ref
	State format.CellState
}

// Allocated reports whether the cell is in use.
func (c Cell) Allocated() bool { return c.State.Allocated() }

// Size returns the cell size including its length prefix.
func (c Cell) Size() int { return c.State.Size }

// CellIterator walks the cells of one page in order.
//
// Usage:
//
//	it := h.Cells(p)
//	for {
//	    c, err := it.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use c
//	}
type CellIterator struct {
	data []byte
	page Page
	off  int
	err  error
}

// Cells returns an iterator over the cells of p.
func (h *Hive) Cells(p Page) *CellIterator {
	return &CellIterator{data: h.data, page: p, off: p.first()}
}

// Next returns the next cell. It returns io.EOF when the walk lands exactly
// on the page end. Once an error is returned every later call returns it.
func (it *CellIterator) Next() (Cell, error) {
	if it.err != nil {
		return Cell{}, it.err
	}
	end := it.page.end()
	if it.off == end {
		it.err = io.EOF
		return Cell{}, it.err
	}
	ref := toRef(it.off)
	if it.off+format.CellHeaderSize > end {
		it.err = corruptf(ref, "cell walk", "cell header crosses page end %#x", uint32(toRef(end)))
		return Cell{}, it.err
	}
	st, err := format.ReadCellState(it.data, it.off)
	if err != nil {
		it.err = corrupt(ref, "cell walk", err)
		return Cell{}, it.err
	}
	if st.Size == 0 {
		it.err = &RecordError{Ref: ref, What: "cell walk", Err: ErrZeroLengthCell}
		return Cell{}, it.err
	}
	if st.Size < format.CellHeaderSize || it.off+st.Size > end {
		it.err = corruptf(ref, "cell walk", "size %d overruns page end %#x", st.Size, uint32(toRef(end)))
		return Cell{}, it.err
	}
	it.off += st.Size
	return Cell{Ref: ref, State: st}, nil
}

// Payload returns a read-only view of the payload of the allocated cell at
// ref. The view is invalidated by any mutation.
func (h *Hive) Payload(ref Ref) ([]byte, error) {
	if err := h.live(); err != nil {
		return nil, err
	}
	return h.payload(ref)
}

// tally walks every page and counts used and free cells.
func (h *Hive) tally() error {
	s := Stats{Size: len(h.data), Pages: len(h.pages)}
	for _, p := range h.pages {
		it := h.Cells(p)
		for {
			c, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if c.Allocated() {
				s.UsedCells++
				s.UsedBytes += c.Size()
			} else {
				s.FreeCells++
				s.FreeBytes += c.Size()
			}
		}
	}
	h.stats = s
	return nil
}
