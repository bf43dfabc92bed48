package subkeys

import (
	"unicode"

	"github.com/joshuapare/ntreg/internal/format"
)

const hashMultiplier = 37

// Hash computes the lh tag of a key name: hash = hash*37 + upper(char).
func Hash(name string) uint32 {
	var hash uint32
	for _, r := range name {
		hash = hash*hashMultiplier + uint32(unicode.ToUpper(r))
	}
	return hash
}

// Tag computes the lf tag of a key name: its first four stored bytes, zero
// padded, read as a little-endian dword. Compressed names use their
// Windows-1252 bytes; other names keep the low byte of each character, as
// the legacy tools did.
func Tag(name string) uint32 {
	var tag uint32
	if raw, compressed, err := format.EncodeName(name); err == nil && compressed {
		for i := 0; i < len(raw) && i < 4; i++ {
			tag |= uint32(raw[i]) << (8 * i)
		}
		return tag
	}
	i := 0
	for _, r := range name {
		if i == 4 {
			break
		}
		tag |= uint32(byte(r)) << (8 * i)
		i++
	}
	return tag
}

// TagFor returns the tag stored alongside name in a block of kind k.
func TagFor(k Kind, name string) uint32 {
	switch k {
	case KindLF:
		return Tag(name)
	case KindLH:
		return Hash(name)
	}
	return 0
}
