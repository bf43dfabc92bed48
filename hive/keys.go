package hive

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joshuapare/ntreg/hive/subkeys"
	"github.com/joshuapare/ntreg/internal/format"
)

const (
	// MaxKeyNameLen is the longest key name, in characters, AddKey accepts.
	MaxKeyNameLen = 255

	// MaxDepth bounds recursive walks. Deeper trees are treated as corrupt.
	MaxDepth = 512
)

func validKeyName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.Contains(name, `\`):
		return fmt.Errorf("%w: %q contains a backslash", ErrInvalidName, name)
	case utf8.RuneCountInString(name) > MaxKeyNameLen:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, MaxKeyNameLen)
	}
	return nil
}

// AddKey creates an empty key called name under parent and links it into
// the parent's index in sorted position.
func (h *Hive) AddKey(parent Ref, name string) (Ref, error) {
	var ref Ref
	err := h.atomically("add key", func() error {
		var err error
		ref, err = h.addKey(parent, name)
		return err
	})
	return ref, err
}

func (h *Hive) addKey(parent Ref, name string) (Ref, error) {
	if err := validKeyName(name); err != nil {
		return NoRef, err
	}
	pnk, err := h.readNK(parent)
	if err != nil {
		return NoRef, err
	}
	ix, err := h.readIndex(Ref(pnk.SubkeyList))
	if err != nil {
		return NoRef, err
	}
	if _, ok := ix.list.Find(name); ok {
		return NoRef, fmt.Errorf("%w: key %q", ErrAlreadyExists, name)
	}
	raw, compressed, err := format.EncodeName(name)
	if err != nil {
		return NoRef, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}

	now := h.filetime()
	nk := format.NKRecord{
		LastWriteRaw:  now,
		Parent:        uint32(parent),
		SubkeyList:    uint32(NoRef),
		VolSubkeyList: uint32(NoRef),
		ValueList:     uint32(NoRef),
		Security:      pnk.Security,
		ClassName:     uint32(NoRef),
		NameRaw:       raw,
	}
	if compressed {
		nk.Flags = format.NKTypeNormal
	}
	ref, err := h.alloc(parent, nk.Size())
	if err != nil {
		return NoRef, err
	}
	if err := h.putNK(ref, nk); err != nil {
		return NoRef, err
	}

	if _, err := ix.list.Insert(subkeys.Entry{Ref: uint32(ref), Name: name}); err != nil {
		return NoRef, fmt.Errorf("%w: key %q", ErrAlreadyExists, name)
	}
	if err := h.relink(parent, &pnk, ix); err != nil {
		return NoRef, err
	}
	if w := nameWidth(raw, compressed); w > pnk.MaxNameLen {
		pnk.MaxNameLen = w
	}
	pnk.LastWriteRaw = now
	if err := h.putNK(parent, pnk); err != nil {
		return NoRef, err
	}

	if err := h.adjustSecurity(Ref(nk.Security), 1); err != nil {
		h.log.Warn("security reference count not updated", "key", ref, "sk", Ref(nk.Security), "err", err)
	}
	return ref, nil
}

// relink frees the cells of the old index, writes ix.list as the new one
// and points pnk at it. pnk is not written back.
func (h *Hive) relink(parent Ref, pnk *format.NKRecord, ix index) error {
	if err := h.freeCells(ix.cells); err != nil {
		return err
	}
	ref, err := h.writeIndex(parent, ix.list, h.kindFor(ix))
	if err != nil {
		return err
	}
	pnk.SubkeyList = uint32(ref)
	pnk.SubkeyCount = uint32(ix.list.Len())
	return nil
}

// nameWidth is the name length in UTF-16 bytes, the unit of the max name
// length hints.
func nameWidth(raw []byte, compressed bool) uint32 {
	if compressed {
		return uint32(len(raw) * 2)
	}
	return uint32(len(raw))
}

// DelKey removes the empty key called name from parent.
func (h *Hive) DelKey(parent Ref, name string) error {
	return h.atomically("delete key", func() error {
		return h.delKey(parent, name, NoRef)
	})
}

// delKey unlinks name from parent. When expect is set, the entry found must
// be that key.
func (h *Hive) delKey(parent Ref, name string, expect Ref) error {
	pnk, err := h.readNK(parent)
	if err != nil {
		return err
	}
	ix, err := h.readIndex(Ref(pnk.SubkeyList))
	if err != nil {
		return err
	}
	e, err := ix.list.Remove(name)
	if err != nil {
		return fmt.Errorf("%w: key %q", ErrNotFound, name)
	}
	child := Ref(e.Ref)
	if expect != NoRef && child != expect {
		return corruptf(expect, "delete key", "parent %s lists %q at %s", parent, name, child)
	}
	cnk, err := h.readNK(child)
	if err != nil {
		return err
	}
	if cnk.SubkeyCount > 0 || cnk.ValueCount > 0 {
		return fmt.Errorf("%w: %q has %d subkeys and %d values", ErrNotEmpty, name, cnk.SubkeyCount, cnk.ValueCount)
	}

	if Ref(cnk.SubkeyList) != NoRef {
		if _, err := h.free(Ref(cnk.SubkeyList)); err != nil {
			return err
		}
	}
	if Ref(cnk.ValueList) != NoRef {
		if _, err := h.free(Ref(cnk.ValueList)); err != nil {
			return err
		}
	}
	if Ref(cnk.ClassName) != NoRef {
		if _, err := h.free(Ref(cnk.ClassName)); err != nil {
			return err
		}
	}
	if err := h.adjustSecurity(Ref(cnk.Security), -1); err != nil {
		h.log.Warn("security reference count not updated", "key", child, "sk", Ref(cnk.Security), "err", err)
	}
	if _, err := h.free(child); err != nil {
		return err
	}

	if err := h.relink(parent, &pnk, ix); err != nil {
		return err
	}
	pnk.LastWriteRaw = h.filetime()
	return h.putNK(parent, pnk)
}

// RDelKeys deletes key together with all of its subkeys and values,
// children first. The root itself is emptied but kept.
func (h *Hive) RDelKeys(key Ref) error {
	return h.atomically("recursive delete", func() error {
		return h.rdel(key, 0)
	})
}

func (h *Hive) rdel(key Ref, depth int) error {
	if depth > MaxDepth {
		return corruptf(key, "recursive delete", "deeper than %d levels", MaxDepth)
	}
	nk, err := h.readNK(key)
	if err != nil {
		return err
	}
	ix, err := h.readIndex(Ref(nk.SubkeyList))
	if err != nil {
		return err
	}
	for _, e := range ix.list.Entries {
		if err := h.rdel(Ref(e.Ref), depth+1); err != nil {
			return err
		}
	}
	if err := h.delAllValues(key); err != nil {
		return err
	}
	if key == h.root || nk.IsRoot() {
		return nil
	}
	name, err := nk.Name()
	if err != nil {
		return corrupt(key, "key name", err)
	}
	err = h.delKey(Ref(nk.Parent), name, key)
	if errors.Is(err, ErrNotFound) {
		return corruptf(key, "recursive delete", "not listed under its parent %s", Ref(nk.Parent))
	}
	return err
}
