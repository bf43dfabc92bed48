package hive

import (
	"fmt"
	"io"

	"github.com/joshuapare/ntreg/internal/format"
)

// FindFree returns the first free cell, in file order, large enough to hold
// a payload of size bytes.
func (h *Hive) FindFree(size int) (Ref, bool) {
	if h.live() != nil || size < 0 {
		return NoRef, false
	}
	need := format.CellSizeFor(size)
	for _, p := range h.pages {
		if ref, ok := h.findFreeIn(p, need); ok {
			return ref, true
		}
	}
	return NoRef, false
}

func (h *Hive) findFreeIn(p Page, need int) (Ref, bool) {
	it := h.Cells(p)
	for {
		c, err := it.Next()
		if err != nil {
			if err != io.EOF {
				h.log.Debug("skipping unreadable page in free scan", "page", p, "err", err)
			}
			return NoRef, false
		}
		if !c.Allocated() && c.Size() >= need {
			return c.Ref, true
		}
	}
}

// Alloc allocates a cell with room for size payload bytes and returns it
// zeroed. The page holding hint is tried first, then every page in order.
// The file is never grown.
func (h *Hive) Alloc(hint Ref, size int) (Ref, error) {
	var ref Ref
	err := h.atomically("alloc", func() error {
		var err error
		ref, err = h.alloc(hint, size)
		return err
	})
	return ref, err
}

func (h *Hive) alloc(hint Ref, size int) (Ref, error) {
	if h.mode&ModeNoAlloc != 0 {
		return NoRef, ErrNoAlloc
	}
	if size < 0 {
		return NoRef, fmt.Errorf("%w: %d bytes", ErrAllocationFailed, size)
	}
	need := format.CellSizeFor(size)

	ref, ok := NoRef, false
	if hint != NoRef {
		if off, err := h.abs(hint); err == nil {
			if p, found := h.pageAt(off); found {
				ref, ok = h.findFreeIn(p, need)
			}
		}
	}
	if !ok {
		ref, ok = h.FindFree(size)
	}
	if !ok {
		return NoRef, fmt.Errorf("%w: no free cell of %d bytes", ErrAllocationFailed, need)
	}

	off := toAbs(ref)
	st, err := format.ReadCellState(h.data, off)
	if err != nil {
		return NoRef, corrupt(ref, "alloc", err)
	}

	// A trail too small to be a cell of its own stays with the allocation.
	cellSize, trail := need, st.Size-need
	if trail < format.MinCellSize {
		cellSize, trail = st.Size, 0
	}
	format.PutCellState(h.mut(off, format.CellHeaderSize), 0, format.Used(cellSize))
	clear(h.mut(off+format.CellHeaderSize, cellSize-format.CellHeaderSize))
	if trail > 0 {
		format.PutCellState(h.mut(off+cellSize, format.CellHeaderSize), 0, format.Unused(trail))
	}

	h.stats.UsedCells++
	h.stats.UsedBytes += cellSize
	h.stats.FreeBytes -= cellSize
	if trail == 0 {
		h.stats.FreeCells--
	}
	h.log.Debug("alloc", "ref", ref, "size", cellSize, "trail", trail)
	return ref, nil
}

// Free releases the cell at ref and coalesces it with a free successor and
// then a free predecessor in the same page. It returns the size of the
// resulting free cell.
func (h *Hive) Free(ref Ref) (int, error) {
	var n int
	err := h.atomically("free", func() error {
		var err error
		n, err = h.free(ref)
		return err
	})
	return n, err
}

func (h *Hive) free(ref Ref) (int, error) {
	if h.mode&ModeNoAlloc != 0 {
		return 0, ErrNoAlloc
	}
	off, err := h.abs(ref)
	if err != nil {
		return 0, err
	}
	p, ok := h.pageAt(off)
	if !ok {
		return 0, corruptf(ref, "free", "not inside any page")
	}

	// Walk from the page start to prove off is a cell boundary and to learn
	// the predecessor.
	prev, cur := -1, p.first()
	for cur < off {
		st, err := format.ReadCellState(h.data, cur)
		if err != nil {
			return 0, corrupt(toRef(cur), "free", err)
		}
		if st.Size < format.CellHeaderSize {
			return 0, &RecordError{Ref: toRef(cur), What: "free", Err: ErrZeroLengthCell}
		}
		prev, cur = cur, cur+st.Size
	}
	if cur != off {
		return 0, corruptf(ref, "free", "not a cell boundary")
	}

	st, err := format.ReadCellState(h.data, off)
	if err != nil {
		return 0, corrupt(ref, "free", err)
	}
	if st.Size < format.CellHeaderSize || off+st.Size > p.end() {
		return 0, corruptf(ref, "free", "size %d overruns page", st.Size)
	}
	if st.Free {
		return 0, &RecordError{Ref: ref, What: "free", Err: ErrDoubleFree}
	}

	h.stats.UsedCells--
	h.stats.UsedBytes -= st.Size
	h.stats.FreeCells++
	h.stats.FreeBytes += st.Size

	start, size := off, st.Size
	if next := off + size; next < p.end() {
		nst, err := format.ReadCellState(h.data, next)
		if err != nil {
			return 0, corrupt(toRef(next), "free", err)
		}
		if nst.Free {
			if nst.Size < format.CellHeaderSize || next+nst.Size > p.end() {
				return 0, corruptf(toRef(next), "free", "free neighbour of size %d overruns page", nst.Size)
			}
			size += nst.Size
			h.stats.FreeCells--
		}
	}
	if prev >= 0 {
		pst, _ := format.ReadCellState(h.data, prev)
		if pst.Free {
			start = prev
			size += pst.Size
			h.stats.FreeCells--
		}
	}
	format.PutCellState(h.mut(start, format.CellHeaderSize), 0, format.Unused(size))
	h.log.Debug("free", "ref", ref, "merged", toRef(start), "size", size)
	return size, nil
}
