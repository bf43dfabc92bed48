package hive

import (
	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
)

// index is a decoded subkey index: the flattened child sequence plus the
// cells it was read from.
type index struct {
	list  subkeys.List
	leaf  subkeys.Kind // format.IndexUnknown when the key has no index
	cells []Ref
}

// kindFor returns the leaf kind to re-encode ix with.
func (h *Hive) kindFor(ix index) subkeys.Kind {
	if ix.leaf != format.IndexUnknown {
		return ix.leaf
	}
	return h.index
}

func (h *Hive) readBlock(ref Ref) (format.IndexRecord, error) {
	b, err := h.payload(ref)
	if err != nil {
		return format.IndexRecord{}, err
	}
	rec, err := format.DecodeIndex(b)
	if err != nil {
		return format.IndexRecord{}, corrupt(ref, "subkey index", err)
	}
	return rec, nil
}

// leafBlocks returns the leaf blocks reachable from ref in order, with the
// ri wrapper flattened, and every cell visited.
func (h *Hive) leafBlocks(ref Ref) ([]format.IndexRecord, []Ref, error) {
	if ref == NoRef {
		return nil, nil, nil
	}
	top, err := h.readBlock(ref)
	if err != nil {
		return nil, nil, err
	}
	if top.Kind.Leaf() {
		return []format.IndexRecord{top}, []Ref{ref}, nil
	}
	blocks := make([]format.IndexRecord, 0, len(top.Entries))
	cells := make([]Ref, 0, len(top.Entries)+1)
	cells = append(cells, ref)
	for _, e := range top.Entries {
		leafRef := Ref(e.Ref)
		leaf, err := h.readBlock(leafRef)
		if err != nil {
			return nil, nil, err
		}
		if !leaf.Kind.Leaf() {
			return nil, nil, corruptf(leafRef, "subkey index", "%s block nested in ri", leaf.Kind)
		}
		blocks = append(blocks, leaf)
		cells = append(cells, leafRef)
	}
	return blocks, cells, nil
}

// readIndex decodes the index at ref into one sorted sequence, fetching
// each child's name from its key node.
func (h *Hive) readIndex(ref Ref) (index, error) {
	blocks, cells, err := h.leafBlocks(ref)
	if err != nil {
		return index{}, err
	}
	ix := index{cells: cells}
	for _, blk := range blocks {
		if ix.leaf == format.IndexUnknown {
			ix.leaf = blk.Kind
		}
		for _, e := range blk.Entries {
			child := Ref(e.Ref)
			nk, err := h.readNK(child)
			if err != nil {
				return index{}, err
			}
			name, err := nk.Name()
			if err != nil {
				return index{}, corrupt(child, "key name", err)
			}
			ix.list.Entries = append(ix.list.Entries, subkeys.Entry{Ref: e.Ref, Name: name})
		}
	}
	return ix, nil
}

// writeIndex encodes list as leaf blocks of kind, wrapped in an ri when more
// than one block is needed. An empty list has no index.
func (h *Hive) writeIndex(hint Ref, list subkeys.List, kind subkeys.Kind) (Ref, error) {
	sizes := subkeys.Plan(list.Len(), kind)
	if len(sizes) == 0 {
		return NoRef, nil
	}
	leaves := make([]Ref, 0, len(sizes))
	start := 0
	for _, n := range sizes {
		rec := format.IndexRecord{Kind: kind, Entries: make([]format.IndexEntry, n)}
		for i, e := range list.Entries[start : start+n] {
			rec.Entries[i] = format.IndexEntry{Ref: e.Ref, Tag: subkeys.TagFor(kind, e.Name)}
		}
		ref, err := h.putBlock(hint, rec)
		if err != nil {
			return NoRef, err
		}
		leaves = append(leaves, ref)
		hint = ref
		start += n
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	ri := format.IndexRecord{Kind: subkeys.KindRI, Entries: make([]format.IndexEntry, len(leaves))}
	for i, ref := range leaves {
		ri.Entries[i].Ref = uint32(ref)
	}
	return h.putBlock(hint, ri)
}

func (h *Hive) putBlock(hint Ref, rec format.IndexRecord) (Ref, error) {
	ref, err := h.alloc(hint, rec.Size())
	if err != nil {
		return NoRef, err
	}
	b, err := h.payloadMut(ref, rec.Size())
	if err != nil {
		return NoRef, err
	}
	if err := format.EncodeIndex(b, rec); err != nil {
		return NoRef, corrupt(ref, "subkey index", err)
	}
	return ref, nil
}

func (h *Hive) freeCells(refs []Ref) error {
	for _, r := range refs {
		if _, err := h.free(r); err != nil {
			return err
		}
	}
	return nil
}

// detectIndexKind reports the leaf kind used under key, looking one level
// into an ri. Keys without children report IndexUnknown.
func (h *Hive) detectIndexKind(nk format.NKRecord) subkeys.Kind {
	if Ref(nk.SubkeyList) == NoRef || nk.SubkeyCount == 0 {
		return format.IndexUnknown
	}
	top, err := h.readBlock(Ref(nk.SubkeyList))
	if err != nil {
		return format.IndexUnknown
	}
	if top.Kind != subkeys.KindRI {
		return top.Kind
	}
	if len(top.Entries) == 0 {
		return format.IndexUnknown
	}
	leaf, err := h.readBlock(Ref(top.Entries[0].Ref))
	if err != nil || !leaf.Kind.Leaf() {
		return format.IndexUnknown
	}
	return leaf.Kind
}
