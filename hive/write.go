package hive

import (
	"fmt"
	"io"

	"github.com/joshuapare/ntreg/internal/format"
)

// Write persists the hive through its sink. It does nothing for a read-only
// or unmodified hive. The base block is restamped first: both sequence
// numbers advance, the timestamp comes from the clock, and the checksum is
// recomputed.
func (h *Hive) Write() error {
	if err := h.live(); err != nil {
		return err
	}
	if h.ReadOnly() || !h.dirty {
		return nil
	}
	if h.sink == nil {
		return ErrNoSink
	}

	prev := h.header
	saved := make([]byte, format.REGFCheckSumOffset+4)
	copy(saved, h.data)

	h.header.PrimarySeq++
	h.header.SecondarySeq = h.header.PrimarySeq
	h.header.LastWriteRaw = h.filetime()
	h.header.DataSize = uint32(h.stats.PageBytes())
	h.header.Put(h.data)
	h.header.Checksum = format.Checksum(h.data)
	format.PutU32(h.data, format.REGFCheckSumOffset, h.header.Checksum)

	if err := h.sink.WriteHive(h.data); err != nil {
		h.header = prev
		copy(h.data, saved)
		return fmt.Errorf("write hive: %w", err)
	}
	h.dirty = false
	h.log.Debug("hive written", "bytes", len(h.data), "sequence", h.header.PrimarySeq)
	return nil
}

// WriteTo streams the buffer as it is, without restamping the base block.
func (h *Hive) WriteTo(w io.Writer) (int64, error) {
	if err := h.live(); err != nil {
		return 0, err
	}
	n, err := w.Write(h.data)
	return int64(n), err
}

// Close releases the buffer. It never writes; call Write first to persist.
func (h *Hive) Close() error {
	if err := h.live(); err != nil {
		return err
	}
	h.data = nil
	h.pages = nil
	h.closed = true
	return nil
}
