package hive

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshuapare/ntreg/internal/format"
)

// Key decodes the key node at ref.
func (h *Hive) Key(ref Ref) (format.NKRecord, error) {
	if err := h.live(); err != nil {
		return format.NKRecord{}, err
	}
	return h.readNK(ref)
}

// Value decodes the value node at ref.
func (h *Hive) Value(ref Ref) (format.VKRecord, error) {
	if err := h.live(); err != nil {
		return format.VKRecord{}, err
	}
	return h.readVK(ref)
}

// KeyName returns the name of the key at ref.
func (h *Hive) KeyName(ref Ref) (string, error) {
	nk, err := h.Key(ref)
	if err != nil {
		return "", err
	}
	name, err := nk.Name()
	if err != nil {
		return "", corrupt(ref, "key name", err)
	}
	return name, nil
}

// KeyLastWrite returns the last write time of the key at ref.
func (h *Hive) KeyLastWrite(ref Ref) (time.Time, error) {
	nk, err := h.Key(ref)
	if err != nil {
		return time.Time{}, err
	}
	return format.FiletimeToTime(nk.LastWriteRaw), nil
}

// AbsPath returns the path of the key at ref from the root, such as
// \ControlSet001\Services. The root itself is "\".
func (h *Hive) AbsPath(ref Ref) (string, error) {
	if err := h.live(); err != nil {
		return "", err
	}
	var names []string
	cur := ref
	for depth := 0; ; depth++ {
		if depth > MaxDepth {
			return "", corruptf(ref, "absolute path", "deeper than %d levels", MaxDepth)
		}
		nk, err := h.readNK(cur)
		if err != nil {
			return "", err
		}
		if cur == h.root || nk.IsRoot() {
			break
		}
		name, err := nk.Name()
		if err != nil {
			return "", corrupt(cur, "key name", err)
		}
		names = append(names, escapeName(name))
		cur = Ref(nk.Parent)
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteByte('\\')
		b.WriteString(names[i])
	}
	if b.Len() == 0 {
		return `\`, nil
	}
	return b.String(), nil
}

// ClassName returns the class name of the key at ref, or "" if it has none.
func (h *Hive) ClassName(ref Ref) (string, error) {
	nk, err := h.Key(ref)
	if err != nil {
		return "", err
	}
	if Ref(nk.ClassName) == NoRef || nk.ClassLength == 0 {
		return "", nil
	}
	b, err := h.payload(Ref(nk.ClassName))
	if err != nil {
		return "", err
	}
	n := int(nk.ClassLength)
	if n > len(b) {
		return "", corruptf(Ref(nk.ClassName), "class name", "length %d exceeds cell payload %d", n, len(b))
	}
	name, err := format.DecodeUTF16(b[:n])
	if err != nil {
		return "", corrupt(Ref(nk.ClassName), "class name", err)
	}
	return name, nil
}

// Security returns the security node referenced by the key at ref.
func (h *Hive) Security(ref Ref) (format.SKRecord, error) {
	nk, err := h.Key(ref)
	if err != nil {
		return format.SKRecord{}, err
	}
	if Ref(nk.Security) == NoRef {
		return format.SKRecord{}, fmt.Errorf("%w: key %s has no security node", ErrNotFound, ref)
	}
	return h.readSK(Ref(nk.Security))
}
