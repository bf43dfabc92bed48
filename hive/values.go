package hive

import (
	"fmt"

	"github.com/joshuapare/ntreg/hive/values"
	"github.com/joshuapare/ntreg/internal/format"
)

// AddValue creates a value called name under key with no data. Dword types
// start out inline. Use "@" for the unnamed value.
func (h *Hive) AddValue(key Ref, name string, typ values.Type) (Ref, error) {
	var ref Ref
	err := h.atomically("add value", func() error {
		var err error
		ref, err = h.addValue(key, name, typ)
		return err
	})
	return ref, err
}

func (h *Hive) addValue(key Ref, name string, typ values.Type) (Ref, error) {
	if name == "" {
		return NoRef, fmt.Errorf("%w: empty value name, use %q for the unnamed value", ErrInvalidName, DefaultValueName)
	}
	nk, _, _, err := h.findValue(key, name)
	switch {
	case err == nil:
		return NoRef, fmt.Errorf("%w: value %q", ErrAlreadyExists, name)
	case !isNotFound(err):
		return NoRef, err
	}
	refs, err := h.readValueList(nk)
	if err != nil {
		return NoRef, err
	}

	stored := name
	if stored == DefaultValueName {
		stored = ""
	}
	raw, compressed, err := format.EncodeName(stored)
	if err != nil {
		return NoRef, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	vk := format.VKRecord{
		DataOffset: uint32(NoRef),
		Type:       uint32(typ),
		NameRaw:    raw,
	}
	if compressed {
		vk.Flags = format.VKFlagCompressedName
	}
	if typ.IsDWORD() {
		vk.DataLength = format.VKDataInline | 4
		vk.DataOffset = 0
	}

	list, err := h.alloc(key, (len(refs)+1)*format.RefEntrySize)
	if err != nil {
		return NoRef, err
	}
	ref, err := h.alloc(list, vk.Size())
	if err != nil {
		return NoRef, err
	}
	if err := h.putVK(ref, vk); err != nil {
		return NoRef, err
	}
	if err := h.putValueList(list, append(refs, ref)); err != nil {
		return NoRef, err
	}
	if Ref(nk.ValueList) != NoRef {
		if _, err := h.free(Ref(nk.ValueList)); err != nil {
			return NoRef, err
		}
	}

	nk.ValueList = uint32(list)
	nk.ValueCount = uint32(len(refs) + 1)
	if w := nameWidth(raw, compressed); w > nk.MaxValueNameLen {
		nk.MaxValueNameLen = w
	}
	nk.LastWriteRaw = h.filetime()
	if err := h.putNK(key, nk); err != nil {
		return NoRef, err
	}
	return ref, nil
}

// DelValue removes the value called name from key along with its data.
func (h *Hive) DelValue(key Ref, name string) error {
	return h.atomically("delete value", func() error {
		nk, ref, slot, err := h.findValue(key, name)
		if err != nil {
			return err
		}
		refs, err := h.readValueList(nk)
		if err != nil {
			return err
		}
		if err := h.dropValue(ref); err != nil {
			return err
		}
		refs = append(refs[:slot], refs[slot+1:]...)
		if len(refs) == 0 {
			if _, err := h.free(Ref(nk.ValueList)); err != nil {
				return err
			}
			nk.ValueList = uint32(NoRef)
		} else if err := h.putValueList(Ref(nk.ValueList), refs); err != nil {
			return err
		}
		nk.ValueCount = uint32(len(refs))
		nk.LastWriteRaw = h.filetime()
		return h.putNK(key, nk)
	})
}

// DelAllValues removes every value of key.
func (h *Hive) DelAllValues(key Ref) error {
	return h.atomically("delete values", func() error {
		return h.delAllValues(key)
	})
}

func (h *Hive) delAllValues(key Ref) error {
	nk, err := h.readNK(key)
	if err != nil {
		return err
	}
	if nk.ValueCount == 0 {
		return nil
	}
	refs, err := h.readValueList(nk)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := h.dropValue(ref); err != nil {
			return err
		}
	}
	if _, err := h.free(Ref(nk.ValueList)); err != nil {
		return err
	}
	nk.ValueList = uint32(NoRef)
	nk.ValueCount = 0
	nk.LastWriteRaw = h.filetime()
	return h.putNK(key, nk)
}

// dropValue frees a value node and its data cell.
func (h *Hive) dropValue(ref Ref) error {
	vk, err := h.readVK(ref)
	if err != nil {
		return err
	}
	if !vk.Inline() && vk.Len() > 0 && Ref(vk.DataOffset) != NoRef {
		if _, err := h.free(Ref(vk.DataOffset)); err != nil {
			return err
		}
	}
	_, err = h.free(ref)
	return err
}
