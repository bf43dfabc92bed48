package hive

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/joshuapare/ntreg/internal/format"
)

// Page is one hbin: a header followed by a run of cells.
type Page struct {
	Ref  Ref // position of the page header relative to the first page
	Size int // header included
}

func (p Page) off() int   { return toAbs(p.Ref) }
func (p Page) first() int { return p.off() + format.HBINHeaderSize }
func (p Page) end() int   { return p.off() + p.Size }

// FirstCell returns the reference of the first cell in the page.
func (p Page) FirstCell() Ref { return toRef(p.first()) }

// End returns the reference just past the page.
func (p Page) End() Ref { return toRef(p.end()) }

func (p Page) String() string {
	return fmt.Sprintf("hbin@%#x+%#x", uint32(p.Ref), p.Size)
}

// Pages returns the pages discovered at open, in file order.
func (h *Hive) Pages() []Page {
	return h.pages
}

// PageContaining returns the page holding ref.
func (h *Hive) PageContaining(ref Ref) (Page, error) {
	if err := h.live(); err != nil {
		return Page{}, err
	}
	off, err := h.abs(ref)
	if err != nil {
		return Page{}, err
	}
	p, ok := h.pageAt(off)
	if !ok {
		return Page{}, corruptf(ref, "page lookup", "not inside any page")
	}
	return p, nil
}

// pageAt finds the page whose cell area contains the absolute offset off.
func (h *Hive) pageAt(off int) (Page, bool) {
	i := sort.Search(len(h.pages), func(i int) bool {
		return h.pages[i].end() > off
	})
	if i == len(h.pages) || off < h.pages[i].first() {
		return Page{}, false
	}
	return h.pages[i], true
}

// discoverPages walks hbin headers from the first page. It stops without
// error at the first candidate that is not a well-formed page, leaving any
// trailing bytes alone.
func discoverPages(data []byte, log *slog.Logger) ([]Page, int) {
	var pages []Page
	off := format.HiveDataBase
	for off+format.HBINHeaderSize <= len(data) {
		hdr, err := format.DecodeHBIN(data[off:])
		if err != nil {
			log.Debug("page discovery stopped", "offset", off, "reason", err)
			break
		}
		size := int(hdr.Size)
		if size < format.HBINHeaderSize+format.MinCellSize || size%format.CellAlignment != 0 {
			log.Warn("page discovery stopped at bad page size", "offset", off, "size", size)
			break
		}
		if off+size > len(data) {
			log.Warn("page discovery stopped at truncated page", "offset", off, "size", size, "buffer", len(data))
			break
		}
		if int(hdr.FileOffset) != off-format.HiveDataBase {
			log.Debug("page self offset mismatch", "offset", off, "recorded", hdr.FileOffset)
		}
		pages = append(pages, Page{Ref: toRef(off), Size: size})
		off += size
	}
	if off < len(data) && len(pages) > 0 {
		log.Debug("ignoring trailing bytes", "offset", off, "count", len(data)-off)
	}
	return pages, off
}
