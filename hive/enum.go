package hive

import (
	"errors"
	"io"

	"github.com/joshuapare/ntreg/hive/values"
	"github.com/joshuapare/ntreg/internal/format"
)

// SubkeyCursor is the resumable position of a subkey enumeration: a block
// within the ri wrapper and an entry within that block. The zero value
// starts at the first subkey.
type SubkeyCursor struct {
	Block int
	Index int
}

// ValueCursor is the resumable position of a value enumeration.
type ValueCursor struct {
	Index int
}

// ExData describes one subkey produced by NextSubkey.
type ExData struct {
	Ref  Ref
	Node format.NKRecord
	Name string
}

// VexData describes one value produced by NextValue. Size is the logical
// data length. For inline data Inline holds the stored dword.
type VexData struct {
	Ref    Ref
	Node   format.VKRecord
	Type   values.Type
	Size   int
	Inline uint32
	Name   string
}

// NextSubkey returns the subkey at c and advances c. It returns io.EOF after
// the last subkey. A corrupt child is reported as an error, and c still
// advances past it so the caller can carry on.
func (h *Hive) NextSubkey(key Ref, c *SubkeyCursor) (ExData, error) {
	if err := h.live(); err != nil {
		return ExData{}, err
	}
	nk, err := h.readNK(key)
	if err != nil {
		return ExData{}, err
	}
	if nk.SubkeyCount == 0 || Ref(nk.SubkeyList) == NoRef || c.Block < 0 || c.Index < 0 {
		return ExData{}, io.EOF
	}
	top, err := h.readBlock(Ref(nk.SubkeyList))
	if err != nil {
		return ExData{}, err
	}

	leaf := top
	if top.Kind == format.IndexRI {
		for {
			if c.Block >= len(top.Entries) {
				return ExData{}, io.EOF
			}
			blkRef := Ref(top.Entries[c.Block].Ref)
			leaf, err = h.readBlock(blkRef)
			if err == nil && !leaf.Kind.Leaf() {
				err = corruptf(blkRef, "subkey index", "%s block nested in ri", leaf.Kind)
			}
			if err != nil {
				c.Block++
				c.Index = 0
				return ExData{}, err
			}
			if c.Index < len(leaf.Entries) {
				break
			}
			c.Block++
			c.Index = 0
		}
	} else if c.Block > 0 || c.Index >= len(leaf.Entries) {
		return ExData{}, io.EOF
	}

	child := Ref(leaf.Entries[c.Index].Ref)
	c.Index++
	cnk, err := h.readNK(child)
	if err != nil {
		return ExData{}, err
	}
	name, err := cnk.Name()
	if err != nil {
		return ExData{}, corrupt(child, "key name", err)
	}
	return ExData{Ref: child, Node: cnk, Name: name}, nil
}

// NextValue returns the value at c and advances c. It returns io.EOF after
// the last value. The unnamed value is reported as "@".
func (h *Hive) NextValue(key Ref, c *ValueCursor) (VexData, error) {
	if err := h.live(); err != nil {
		return VexData{}, err
	}
	nk, err := h.readNK(key)
	if err != nil {
		return VexData{}, err
	}
	if c.Index < 0 || c.Index >= int(nk.ValueCount) {
		return VexData{}, io.EOF
	}
	refs, err := h.readValueList(nk)
	if err != nil {
		c.Index = int(nk.ValueCount)
		return VexData{}, err
	}
	ref := refs[c.Index]
	c.Index++
	vk, err := h.readVK(ref)
	if err != nil {
		return VexData{}, err
	}
	name, err := vk.Name()
	if err != nil {
		return VexData{}, corrupt(ref, "value name", err)
	}
	if name == "" {
		name = DefaultValueName
	}
	vx := VexData{Ref: ref, Node: vk, Type: values.Type(vk.Type), Size: vk.Len(), Name: name}
	switch {
	case vk.InlineInType():
		vx.Type = values.DWORD
		vx.Inline = vk.Type
	case vk.Inline():
		vx.Inline = vk.DataOffset
	}
	return vx, nil
}

// Subkeys collects every readable subkey of key. Errors for corrupt children
// are joined and returned alongside the rest; an error that stops the
// enumeration itself ends the walk.
func (h *Hive) Subkeys(key Ref) ([]ExData, error) {
	var (
		out  []ExData
		errs []error
		c    SubkeyCursor
	)
	for {
		prev := c
		ex, err := h.NextSubkey(key, &c)
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err)
			if c == prev {
				break
			}
			continue
		}
		out = append(out, ex)
	}
	return out, errors.Join(errs...)
}

// Values collects every readable value of key, like Subkeys.
func (h *Hive) Values(key Ref) ([]VexData, error) {
	var (
		out  []VexData
		errs []error
		c    ValueCursor
	)
	for {
		prev := c
		vx, err := h.NextValue(key, &c)
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err)
			if c == prev {
				break
			}
			continue
		}
		out = append(out, vx)
	}
	return out, errors.Join(errs...)
}
