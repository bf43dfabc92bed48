package hive

import (
	"github.com/joshuapare/ntreg/internal/format"
)

func (h *Hive) readNK(ref Ref) (format.NKRecord, error) {
	b, err := h.payload(ref)
	if err != nil {
		return format.NKRecord{}, err
	}
	nk, err := format.DecodeNK(b)
	if err != nil {
		return format.NKRecord{}, corrupt(ref, "key node", err)
	}
	return nk, nil
}

func (h *Hive) putNK(ref Ref, nk format.NKRecord) error {
	b, err := h.payloadMut(ref, nk.Size())
	if err != nil {
		return err
	}
	if err := format.EncodeNK(b, nk); err != nil {
		return corrupt(ref, "key node", err)
	}
	return nil
}

func (h *Hive) readVK(ref Ref) (format.VKRecord, error) {
	b, err := h.payload(ref)
	if err != nil {
		return format.VKRecord{}, err
	}
	vk, err := format.DecodeVK(b)
	if err != nil {
		return format.VKRecord{}, corrupt(ref, "value node", err)
	}
	return vk, nil
}

func (h *Hive) putVK(ref Ref, vk format.VKRecord) error {
	b, err := h.payloadMut(ref, vk.Size())
	if err != nil {
		return err
	}
	if err := format.EncodeVK(b, vk); err != nil {
		return corrupt(ref, "value node", err)
	}
	return nil
}

func (h *Hive) readSK(ref Ref) (format.SKRecord, error) {
	b, err := h.payload(ref)
	if err != nil {
		return format.SKRecord{}, err
	}
	sk, err := format.DecodeSK(b)
	if err != nil {
		return format.SKRecord{}, corrupt(ref, "security node", err)
	}
	return sk, nil
}

// readValueList returns the value references of a key.
func (h *Hive) readValueList(nk format.NKRecord) ([]Ref, error) {
	if nk.ValueCount == 0 {
		return nil, nil
	}
	ref := Ref(nk.ValueList)
	b, err := h.payload(ref)
	if err != nil {
		return nil, err
	}
	raw, err := format.DecodeValueList(b, int(nk.ValueCount))
	if err != nil {
		return nil, corrupt(ref, "value list", err)
	}
	refs := make([]Ref, len(raw))
	for i, r := range raw {
		refs[i] = Ref(r)
	}
	return refs, nil
}

func (h *Hive) putValueList(ref Ref, refs []Ref) error {
	b, err := h.payloadMut(ref, len(refs)*format.RefEntrySize)
	if err != nil {
		return err
	}
	raw := make([]uint32, len(refs))
	for i, r := range refs {
		raw[i] = uint32(r)
	}
	return format.EncodeValueList(b, raw)
}

// adjustSecurity moves the reference count of a security node by delta.
// Keys without a security node are left alone.
func (h *Hive) adjustSecurity(ref Ref, delta int) error {
	if ref == NoRef {
		return nil
	}
	b, err := h.payload(ref)
	if err != nil {
		return err
	}
	if _, err := format.DecodeSK(b); err != nil {
		return corrupt(ref, "security node", err)
	}
	count := int(format.ReadU32(b, format.SKReferenceCountOffset)) + delta
	if count < 0 {
		count = 0
	}
	w, err := h.payloadMut(ref, format.SKFixedSize)
	if err != nil {
		return err
	}
	format.PutU32(w, format.SKReferenceCountOffset, uint32(count))
	return nil
}
