package hive

import (
	"bytes"
	"fmt"
)

// journal records the bytes a mutation overwrites so a failed operation can
// be undone. Ranges are restored newest first.
type journal struct {
	saved []savedRange
	stats Stats
	dirty bool
}

type savedRange struct {
	off  int
	data []byte
}

// mut returns the writable range [off, off+n) of the buffer, saving its
// previous contents when a journal is active, and marks the hive dirty.
func (h *Hive) mut(off, n int) []byte {
	if h.jr != nil {
		h.jr.saved = append(h.jr.saved, savedRange{off: off, data: bytes.Clone(h.data[off : off+n])})
	}
	h.dirty = true
	return h.data[off : off+n : off+n]
}

// atomically runs fn so that it either fully applies or leaves buffer,
// tallies and dirty flag untouched. Nested calls join the outer journal.
func (h *Hive) atomically(op string, fn func() error) error {
	if err := h.writable(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if h.jr != nil {
		return fn()
	}
	h.jr = &journal{stats: h.stats, dirty: h.dirty}
	err := fn()
	jr := h.jr
	h.jr = nil
	if err == nil {
		return nil
	}
	for i := len(jr.saved) - 1; i >= 0; i-- {
		s := jr.saved[i]
		copy(h.data[s.off:], s.data)
	}
	h.stats = jr.stats
	h.dirty = jr.dirty
	h.log.Debug("rolled back", "op", op, "ranges", len(jr.saved), "err", err)
	return fmt.Errorf("%s: %w", op, err)
}
