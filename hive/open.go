package hive

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joshuapare/ntreg/internal/format"
	"github.com/joshuapare/ntreg/internal/writer"
)

// Open reads the hive file at path. Unless the hive is read-only or
// opts.Sink is set, Write replaces the file at path.
func Open(path string, opts Options) (*Hive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open hive: %w", err)
	}
	if opts.Sink == nil && opts.Mode&ModeReadOnly == 0 {
		opts.Sink = &writer.FileWriter{Path: path}
	}
	h, err := load(data, opts)
	if err != nil {
		return nil, fmt.Errorf("open hive %s: %w", path, err)
	}
	return h, nil
}

// Load parses a hive from data. The bytes are copied, so the caller keeps
// ownership of data.
func Load(data []byte, opts Options) (*Hive, error) {
	return load(bytes.Clone(data), opts)
}

func load(data []byte, opts Options) (*Hive, error) {
	log := opts.logger()
	if len(data) < format.HeaderSize+format.HBINHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than a base block and one page", ErrCorruptHeader, len(data))
	}
	hdr, err := format.DecodeHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHeader, err)
	}
	if sum := format.Checksum(data); sum != hdr.Checksum {
		log.Warn("base block checksum mismatch", "stored", hdr.Checksum, "computed", sum)
	}
	if hdr.PrimarySeq != hdr.SecondarySeq {
		log.Warn("base block sequence numbers differ", "primary", hdr.PrimarySeq, "secondary", hdr.SecondarySeq)
	}

	pages, end := discoverPages(data, log)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages at %#x", ErrCorruptHeader, format.HiveDataBase)
	}

	h := &Hive{
		data:   data,
		header: hdr,
		pages:  pages,
		end:    end,
		root:   Ref(hdr.RootCell),
		mode:   opts.Mode,
		sink:   opts.Sink,
		log:    log,
		now:    opts.clock(),
	}
	if err := h.tally(); err != nil {
		return nil, err
	}
	if pb := h.stats.PageBytes(); int(hdr.DataSize) != pb {
		log.Warn("base block data size disagrees with pages", "recorded", hdr.DataSize, "pages", pb)
	}

	root, err := h.readNK(h.root)
	if err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	if !root.IsRoot() {
		return nil, corruptf(h.root, "root key", "flags %#04x lack the hive entry bit", root.Flags)
	}

	h.index = opts.IndexKind
	if h.index == format.IndexUnknown {
		h.index = h.detectIndexKind(root)
	}
	if !h.index.Leaf() {
		h.index = format.IndexLF
	}
	h.class = h.classify()

	log.Debug("hive loaded",
		"pages", h.stats.Pages,
		"used_cells", h.stats.UsedCells,
		"free_cells", h.stats.FreeCells,
		"index", h.index,
		"class", h.class)
	return h, nil
}
