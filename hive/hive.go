package hive

import (
	"log/slog"
	"time"

	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
)

// Hive is a loaded hive. It exclusively owns its buffer.
type Hive struct {
	data   []byte
	header format.Header
	pages  []Page
	end    int // absolute end of the last page
	stats  Stats
	root   Ref
	index  subkeys.Kind
	class  Class
	mode   Mode
	dirty  bool
	closed bool
	sink   Sink
	log    *slog.Logger
	now    func() time.Time
	jr     *journal
}

// Stats are the allocation tallies of a hive. UsedBytes and FreeBytes count
// whole cells, length prefix included, so for a consistent hive
// UsedBytes + FreeBytes + Pages*0x20 equals the size of all pages.
type Stats struct {
	Size      int // buffer size, trailing bytes included
	Pages     int
	UsedCells int
	UsedBytes int
	FreeCells int
	FreeBytes int
}

// PageBytes is the total size of all pages.
func (s Stats) PageBytes() int {
	return s.UsedBytes + s.FreeBytes + s.Pages*format.HBINHeaderSize
}

// Stats returns the current tallies.
func (h *Hive) Stats() Stats { return h.stats }

// Root returns the root key.
func (h *Hive) Root() Ref { return h.root }

// IndexKind returns the index kind used for new index blocks.
func (h *Hive) IndexKind() subkeys.Kind { return h.index }

// Class returns the classification determined at open.
func (h *Hive) Class() Class { return h.class }

// Header returns the base block as decoded at open or last written.
func (h *Hive) Header() format.Header { return h.header }

// Dirty reports whether the buffer changed since open or the last Write.
func (h *Hive) Dirty() bool { return h.dirty }

// ReadOnly reports whether the hive rejects mutations.
func (h *Hive) ReadOnly() bool { return h.mode&ModeReadOnly != 0 }

// Bytes returns the hive buffer. Callers must not modify it.
func (h *Hive) Bytes() []byte { return h.data }

// Name returns the file name recorded in the base block.
func (h *Hive) Name() string {
	name, err := format.DecodeUTF16(h.header.FileNameRaw)
	if err != nil {
		return ""
	}
	return name
}

// LastWrite returns the base block timestamp.
func (h *Hive) LastWrite() time.Time {
	return format.FiletimeToTime(h.header.LastWriteRaw)
}

func (h *Hive) live() error {
	if h == nil || h.closed {
		return ErrClosed
	}
	return nil
}

func (h *Hive) writable() error {
	if err := h.live(); err != nil {
		return err
	}
	if h.ReadOnly() {
		return ErrReadOnly
	}
	return nil
}

func (h *Hive) filetime() uint64 {
	return format.TimeToFiletime(h.now())
}
