package hive

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/ntreg/hive/values"
	"github.com/joshuapare/ntreg/internal/format"
)

const inlineMax = 4

// KeyVal is a copy of a value's data.
type KeyVal struct {
	Type values.Type
	Data []byte
}

// Len returns the data length.
func (kv KeyVal) Len() int { return len(kv.Data) }

// Encode returns the data prefixed by its length as a little-endian dword.
func (kv KeyVal) Encode() []byte {
	out := make([]byte, 4+len(kv.Data))
	binary.LittleEndian.PutUint32(out, uint32(len(kv.Data)))
	copy(out[4:], kv.Data)
	return out
}

// effectiveType is the type a value reads as. The dword-in-type-field
// encoding always reads as REG_DWORD.
func effectiveType(vk format.VKRecord) values.Type {
	if vk.InlineInType() {
		return values.DWORD
	}
	return values.Type(vk.Type)
}

// valueData copies the data of vk out of the hive.
func (h *Hive) valueData(ref Ref, vk format.VKRecord) ([]byte, error) {
	var inline [inlineMax]byte
	switch {
	case vk.InlineInType():
		binary.LittleEndian.PutUint32(inline[:], vk.Type)
		return inline[:], nil
	case vk.Inline():
		n := vk.Len()
		if n > inlineMax {
			return nil, corruptf(ref, "value data", "inline length %d exceeds %d", n, inlineMax)
		}
		binary.LittleEndian.PutUint32(inline[:], vk.DataOffset)
		return bytes.Clone(inline[:n]), nil
	}
	n := vk.Len()
	if n == 0 {
		return []byte{}, nil
	}
	b, err := h.payload(Ref(vk.DataOffset))
	if err != nil {
		return nil, err
	}
	if n > len(b) {
		return nil, corruptf(Ref(vk.DataOffset), "value data", "length %d exceeds cell payload %d", n, len(b))
	}
	return bytes.Clone(b[:n]), nil
}

// ReadValueData copies out the data of the value at path, relative to key.
// When expected is not nil the stored type must match it.
func (h *Hive) ReadValueData(key Ref, path string, expected *values.Type) (KeyVal, error) {
	if err := h.live(); err != nil {
		return KeyVal{}, err
	}
	_, ref, err := h.resolveValue(key, path)
	if err != nil {
		return KeyVal{}, err
	}
	vk, err := h.readVK(ref)
	if err != nil {
		return KeyVal{}, err
	}
	typ := effectiveType(vk)
	if expected != nil && *expected != typ {
		return KeyVal{}, fmt.Errorf("%w: %q is %s, not %s", ErrTypeMismatch, path, typ, *expected)
	}
	data, err := h.valueData(ref, vk)
	if err != nil {
		return KeyVal{}, err
	}
	return KeyVal{Type: typ, Data: data}, nil
}

// WriteValueData replaces the data and type of the value at path. Inline
// values stay inline while the data fits; data of unchanged size is
// overwritten in place; anything else moves to a freshly allocated cell.
func (h *Hive) WriteValueData(key Ref, path string, data []byte, typ values.Type) error {
	return h.atomically("write value", func() error {
		owner, ref, err := h.resolveValue(key, path)
		if err != nil {
			return err
		}
		vk, err := h.readVK(ref)
		if err != nil {
			return err
		}
		if err := h.storeData(ref, &vk, data); err != nil {
			return err
		}
		vk.Type = uint32(typ)
		if err := h.putVK(ref, vk); err != nil {
			return err
		}
		nk, err := h.readNK(owner)
		if err != nil {
			return err
		}
		if n := uint32(len(data)); n > nk.MaxValueDataLen {
			nk.MaxValueDataLen = n
		}
		nk.LastWriteRaw = h.filetime()
		return h.putNK(owner, nk)
	})
}

func (h *Hive) storeData(ref Ref, vk *format.VKRecord, data []byte) error {
	n := len(data)
	if vk.Inline() && n <= inlineMax {
		var inline [inlineMax]byte
		copy(inline[:], data)
		vk.DataLength = format.VKDataInline | uint32(n)
		vk.DataOffset = binary.LittleEndian.Uint32(inline[:])
		return nil
	}

	old := NoRef
	if !vk.Inline() && vk.Len() > 0 {
		old = Ref(vk.DataOffset)
	}
	if old != NoRef && vk.Len() == n {
		b, err := h.payloadMut(old, n)
		if err != nil {
			return err
		}
		copy(b, data)
		return nil
	}

	cell := NoRef
	if n > 0 {
		var err error
		if cell, err = h.alloc(ref, n); err != nil {
			return err
		}
		b, err := h.payloadMut(cell, n)
		if err != nil {
			return err
		}
		copy(b, data)
	}
	if old != NoRef {
		if _, err := h.free(old); err != nil {
			return err
		}
	}
	vk.DataLength = uint32(n)
	vk.DataOffset = uint32(cell)
	return nil
}

// ValueType returns the type of the value at path.
func (h *Hive) ValueType(key Ref, path string) (values.Type, error) {
	vk, err := h.valueNode(key, path)
	if err != nil {
		return values.None, err
	}
	return effectiveType(vk), nil
}

// ValueLen returns the data length of the value at path.
func (h *Hive) ValueLen(key Ref, path string) (int, error) {
	vk, err := h.valueNode(key, path)
	if err != nil {
		return 0, err
	}
	return vk.Len(), nil
}

func (h *Hive) valueNode(key Ref, path string) (format.VKRecord, error) {
	if err := h.live(); err != nil {
		return format.VKRecord{}, err
	}
	_, ref, err := h.resolveValue(key, path)
	if err != nil {
		return format.VKRecord{}, err
	}
	return h.readVK(ref)
}

// DWORD reads a REG_DWORD or REG_DWORD_BIG_ENDIAN value.
func (h *Hive) DWORD(key Ref, path string) (uint32, error) {
	kv, err := h.ReadValueData(key, path, nil)
	if err != nil {
		return 0, err
	}
	if !kv.Type.IsDWORD() {
		return 0, fmt.Errorf("%w: %q is %s", ErrTypeMismatch, path, kv.Type)
	}
	v, err := values.DecodeDWORD(kv.Type, kv.Data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return v, nil
}

// PutDWORD stores v into an existing dword value, keeping its byte order.
func (h *Hive) PutDWORD(key Ref, path string, v uint32) error {
	typ, err := h.ValueType(key, path)
	if err != nil {
		return err
	}
	if !typ.IsDWORD() {
		return fmt.Errorf("%w: %q is %s", ErrTypeMismatch, path, typ)
	}
	return h.WriteValueData(key, path, values.EncodeDWORD(typ, v), typ)
}
