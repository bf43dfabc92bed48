package verify

import (
	"fmt"
	"io"

	"github.com/joshuapare/ntreg/hive"
	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
)

// ValidationError describes one failed check.
type ValidationError struct {
	Type    string
	Message string
	Ref     hive.Ref // hive.NoRef when not tied to a cell
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Ref != hive.NoRef {
		return fmt.Sprintf("%s at %s: %s", e.Type, e.Ref, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func fail(typ string, ref hive.Ref, format string, args ...any) *ValidationError {
	return &ValidationError{Type: typ, Ref: ref, Message: fmt.Sprintf(format, args...)}
}

// AllInvariants runs every check and returns the first failure.
func AllInvariants(h *hive.Hive) error {
	if err := Header(h.Bytes()); err != nil {
		return err
	}
	if err := Cells(h); err != nil {
		return err
	}
	if err := Conservation(h); err != nil {
		return err
	}
	return Tree(h)
}

// Header validates the base block at the start of data.
func Header(data []byte) error {
	hdr, err := format.DecodeHeader(data)
	if err != nil {
		return fail("Header", hive.NoRef, "%v", err)
	}
	if hdr.MajorVersion != 1 {
		return fail("Header", hive.NoRef, "unexpected major version %d", hdr.MajorVersion)
	}
	if sum := format.Checksum(data); sum != hdr.Checksum {
		return &ValidationError{
			Type:    "Header",
			Ref:     hive.NoRef,
			Message: fmt.Sprintf("checksum mismatch: computed %#08x, stored %#08x", sum, hdr.Checksum),
			Details: map[string]any{"computed": sum, "stored": hdr.Checksum},
		}
	}
	if hdr.PrimarySeq != hdr.SecondarySeq {
		return fail("Header", hive.NoRef, "sequence numbers differ: %d != %d", hdr.PrimarySeq, hdr.SecondarySeq)
	}
	return nil
}

// Cells walks every page and checks alignment and coalescing.
func Cells(h *hive.Hive) error {
	for _, p := range h.Pages() {
		it := h.Cells(p)
		prevFree := false
		for {
			c, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fail("Cells", p.Ref, "%v", err)
			}
			if c.Size()%format.CellAlignment != 0 {
				return fail("Cells", c.Ref, "size %d is not 8-byte aligned", c.Size())
			}
			if !c.Allocated() && prevFree {
				return fail("Cells", c.Ref, "free cell follows a free cell")
			}
			prevFree = !c.Allocated()
		}
	}
	return nil
}

// Conservation checks that the tallies account for every page byte and
// agree with a fresh walk.
func Conservation(h *hive.Hive) error {
	var pageBytes int
	var walked hive.Stats
	for _, p := range h.Pages() {
		pageBytes += p.Size
		it := h.Cells(p)
		for {
			c, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fail("Conservation", p.Ref, "%v", err)
			}
			if c.Allocated() {
				walked.UsedCells++
				walked.UsedBytes += c.Size()
			} else {
				walked.FreeCells++
				walked.FreeBytes += c.Size()
			}
		}
	}
	st := h.Stats()
	if st.PageBytes() != pageBytes {
		return &ValidationError{
			Type:    "Conservation",
			Ref:     hive.NoRef,
			Message: fmt.Sprintf("used %d + free %d + headers %d != page bytes %d", st.UsedBytes, st.FreeBytes, st.Pages*format.HBINHeaderSize, pageBytes),
			Details: map[string]any{"stats": st, "page_bytes": pageBytes},
		}
	}
	if walked.UsedCells != st.UsedCells || walked.UsedBytes != st.UsedBytes ||
		walked.FreeCells != st.FreeCells || walked.FreeBytes != st.FreeBytes {
		return &ValidationError{
			Type:    "Conservation",
			Ref:     hive.NoRef,
			Message: fmt.Sprintf("tallies %+v disagree with walk %+v", st, walked),
			Details: map[string]any{"stats": st, "walked": walked},
		}
	}
	return nil
}

// Tree walks the key tree from the root.
func Tree(h *hive.Hive) error {
	return tree(h, h.Root(), 0)
}

func tree(h *hive.Hive, key hive.Ref, depth int) error {
	if depth > hive.MaxDepth {
		return fail("Tree", key, "deeper than %d levels", hive.MaxDepth)
	}
	nk, err := h.Key(key)
	if err != nil {
		return fail("Tree", key, "%v", err)
	}
	subs, err := h.Subkeys(key)
	if err != nil {
		return fail("Tree", key, "%v", err)
	}
	if len(subs) != int(nk.SubkeyCount) {
		return fail("Tree", key, "subkey count %d, index holds %d", nk.SubkeyCount, len(subs))
	}
	vals, err := h.Values(key)
	if err != nil {
		return fail("Tree", key, "%v", err)
	}
	if len(vals) != int(nk.ValueCount) {
		return fail("Tree", key, "value count %d, list holds %d", nk.ValueCount, len(vals))
	}
	for i, ex := range subs {
		if i > 0 && subkeys.Compare(subs[i-1].Name, ex.Name) >= 0 {
			return fail("Tree", key, "index out of order: %q before %q", subs[i-1].Name, ex.Name)
		}
		if hive.Ref(ex.Node.Parent) != key {
			return fail("Tree", ex.Ref, "parent is %s, listed under %s", hive.Ref(ex.Node.Parent), key)
		}
		if err := tree(h, ex.Ref, depth+1); err != nil {
			return err
		}
	}
	return nil
}
