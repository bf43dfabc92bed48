package format

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeName turns raw key or value name bytes into a string. Compressed
// names are 8-bit Windows-1252; the rest are UTF-16LE.
func DecodeName(raw []byte, compressed bool) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if compressed {
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("name: %w", err)
		}
		return string(out), nil
	}
	if len(raw)%2 != 0 {
		return "", fmt.Errorf("name: odd UTF-16 length %d: %w", len(raw), ErrTruncated)
	}
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("name: %w", err)
	}
	return string(out), nil
}

// EncodeName returns the on-disk bytes for name. Names representable in
// Windows-1252 are stored compressed, anything else falls back to UTF-16LE.
func EncodeName(name string) ([]byte, bool, error) {
	if out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(name)); err == nil {
		return out, true, nil
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return nil, false, fmt.Errorf("name %q: %w", name, ErrUnencodable)
	}
	return out, false, nil
}

// DecodeUTF16 decodes UTF-16LE bytes, stopping at the first NUL code unit.
func DecodeUTF16(raw []byte) (string, error) {
	n := len(raw) &^ 1
	for i := 0; i+1 < n; i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			n = i
			break
		}
	}
	out, err := utf16le.NewDecoder().Bytes(raw[:n])
	if err != nil {
		return "", fmt.Errorf("utf16: %w", err)
	}
	return string(out), nil
}

// EncodeUTF16 encodes s as UTF-16LE without a terminator.
func EncodeUTF16(s string) ([]byte, error) {
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("utf16: %w", err)
	}
	return out, nil
}
