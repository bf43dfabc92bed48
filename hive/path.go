package hive

import (
	"fmt"
	"strings"

	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
)

// DefaultValueName addresses a key's unnamed value in paths and value names.
const DefaultValueName = "@"

// TravPath resolves path relative to start and returns the key it names, or
// with wantValue the value named by its last segment.
//
// Segments are separated by a single backslash; a doubled backslash is a
// literal backslash inside a name. A leading single backslash anchors the
// path at the root. "." stays put and ".." moves to the parent, staying put
// at the root. Names match case-insensitively over their full length.
func (h *Hive) TravPath(start Ref, path string, wantValue bool) (Ref, error) {
	if err := h.live(); err != nil {
		return NoRef, err
	}
	if !wantValue {
		return h.walk(start, path)
	}
	_, ref, err := h.resolveValue(start, path)
	return ref, err
}

// Lookup resolves a key path from the root.
func (h *Hive) Lookup(path string) (Ref, error) {
	return h.TravPath(h.root, path, false)
}

func (h *Hive) walk(start Ref, path string) (Ref, error) {
	cur, segs := h.anchor(start, path)
	return h.walkSegments(cur, segs)
}

// resolveValue returns the owning key and the value node named by path.
func (h *Hive) resolveValue(start Ref, path string) (Ref, Ref, error) {
	cur, segs := h.anchor(start, path)
	if len(segs) == 0 {
		return NoRef, NoRef, fmt.Errorf("%w: no value name in %q", ErrNotFound, path)
	}
	key, err := h.walkSegments(cur, segs[:len(segs)-1])
	if err != nil {
		return NoRef, NoRef, err
	}
	_, ref, _, err := h.findValue(key, segs[len(segs)-1])
	if err != nil {
		return NoRef, NoRef, err
	}
	return key, ref, nil
}

func (h *Hive) anchor(start Ref, path string) (Ref, []string) {
	if strings.HasPrefix(path, `\`) && !strings.HasPrefix(path, `\\`) {
		return h.root, splitPath(path[1:])
	}
	return start, splitPath(path)
}

func (h *Hive) walkSegments(cur Ref, segs []string) (Ref, error) {
	nk, err := h.readNK(cur)
	if err != nil {
		return NoRef, err
	}
	for _, seg := range segs {
		switch seg {
		case ".":
			continue
		case "..":
			if cur == h.root || nk.IsRoot() {
				continue
			}
			cur = Ref(nk.Parent)
		default:
			cur, err = h.findChild(nk, seg)
			if err != nil {
				return NoRef, err
			}
		}
		if nk, err = h.readNK(cur); err != nil {
			return NoRef, err
		}
	}
	return cur, nil
}

// splitPath splits on single backslashes, unescapes doubled ones and drops
// empty segments.
func splitPath(path string) []string {
	var (
		segs []string
		cur  strings.Builder
	)
	for i := 0; i < len(path); i++ {
		if path[i] != '\\' {
			cur.WriteByte(path[i])
			continue
		}
		if i+1 < len(path) && path[i+1] == '\\' {
			cur.WriteByte('\\')
			i++
			continue
		}
		if cur.Len() > 0 {
			segs = append(segs, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		segs = append(segs, cur.String())
	}
	return segs
}

// escapeName doubles backslashes so a name survives splitPath.
func escapeName(name string) string {
	return strings.ReplaceAll(name, `\`, `\\`)
}

// findChild looks name up in the index of nk. Blocks are sorted, so the
// scan stops at the first larger name; lh entries with another hash are
// skipped without touching the child.
func (h *Hive) findChild(nk format.NKRecord, name string) (Ref, error) {
	if nk.SubkeyCount == 0 {
		return NoRef, fmt.Errorf("%w: key %q", ErrNotFound, name)
	}
	blocks, _, err := h.leafBlocks(Ref(nk.SubkeyList))
	if err != nil {
		return NoRef, err
	}
	hash := subkeys.Hash(name)
	for _, blk := range blocks {
		for _, e := range blk.Entries {
			if blk.Kind == subkeys.KindLH && e.Tag != hash {
				continue
			}
			child := Ref(e.Ref)
			cnk, err := h.readNK(child)
			if err != nil {
				return NoRef, err
			}
			cname, err := cnk.Name()
			if err != nil {
				return NoRef, corrupt(child, "key name", err)
			}
			switch c := subkeys.Compare(cname, name); {
			case c == 0:
				return child, nil
			case c > 0:
				return NoRef, fmt.Errorf("%w: key %q", ErrNotFound, name)
			}
		}
	}
	return NoRef, fmt.Errorf("%w: key %q", ErrNotFound, name)
}

// findValue scans the value list of key for name. It returns the key node,
// the value reference and its slot in the list.
func (h *Hive) findValue(key Ref, name string) (format.NKRecord, Ref, int, error) {
	nk, err := h.readNK(key)
	if err != nil {
		return nk, NoRef, -1, err
	}
	want := name
	if want == DefaultValueName {
		want = ""
	}
	refs, err := h.readValueList(nk)
	if err != nil {
		return nk, NoRef, -1, err
	}
	for i, ref := range refs {
		vk, err := h.readVK(ref)
		if err != nil {
			return nk, NoRef, -1, err
		}
		vname, err := vk.Name()
		if err != nil {
			return nk, NoRef, -1, corrupt(ref, "value name", err)
		}
		if len(vname) == len(want) && subkeys.Equal(vname, want) {
			return nk, ref, i, nil
		}
	}
	return nk, NoRef, -1, fmt.Errorf("%w: value %q", ErrNotFound, name)
}
