package values

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/ntreg/internal/buf"
	"github.com/joshuapare/ntreg/internal/format"
)

// DecodeString decodes a REG_SZ style payload, dropping the terminator.
func DecodeString(data []byte) (string, error) {
	return format.DecodeUTF16(data)
}

// EncodeString encodes s as a NUL terminated UTF-16LE payload.
func EncodeString(s string) ([]byte, error) {
	out, err := format.EncodeUTF16(s)
	if err != nil {
		return nil, err
	}
	return append(out, 0, 0), nil
}

// DecodeMultiString decodes a REG_MULTI_SZ payload. The list ends at the
// first empty string or at the end of the data.
func DecodeMultiString(data []byte) ([]string, error) {
	var out []string
	n := len(data) &^ 1
	start := 0
	for i := 0; i+1 < n; i += 2 {
		if data[i] != 0 || data[i+1] != 0 {
			continue
		}
		if i == start {
			return out, nil
		}
		s, err := format.DecodeUTF16(data[start:i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		start = i + 2
	}
	if start < n {
		s, err := format.DecodeUTF16(data[start:n])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeMultiString encodes ss as a REG_MULTI_SZ payload.
func EncodeMultiString(ss []string) ([]byte, error) {
	var out []byte
	for _, s := range ss {
		b, err := EncodeString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return append(out, 0, 0), nil
}

// DecodeDWORD decodes a 32-bit payload honoring the byte order of t.
func DecodeDWORD(t Type, data []byte) (uint32, error) {
	if !t.IsDWORD() {
		return 0, fmt.Errorf("%w: %s is not a dword", ErrWrongType, t)
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: dword needs 4 bytes, have %d", ErrTruncated, len(data))
	}
	return buf.U32(t.order(), data), nil
}

// EncodeDWORD encodes v in the byte order of t.
func EncodeDWORD(t Type, v uint32) []byte {
	out := make([]byte, 4)
	buf.PutU32(t.order(), out, v)
	return out
}

// DecodeQWORD decodes a REG_QWORD payload.
func DecodeQWORD(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: qword needs 8 bytes, have %d", ErrTruncated, len(data))
	}
	return buf.LE64(data), nil
}

// Format renders a payload for display according to its type. Payloads that
// fail to decode fall back to hex.
func Format(t Type, data []byte) string {
	switch {
	case t.IsString():
		if s, err := DecodeString(data); err == nil {
			return s
		}
	case t == MultiString:
		if ss, err := DecodeMultiString(data); err == nil {
			return strings.Join(ss, "\\0")
		}
	case t.IsDWORD():
		if v, err := DecodeDWORD(t, data); err == nil {
			return "0x" + strconv.FormatUint(uint64(v), 16) + " (" + strconv.FormatUint(uint64(v), 10) + ")"
		}
	case t == QWORD:
		if v, err := DecodeQWORD(data); err == nil {
			return "0x" + strconv.FormatUint(v, 16)
		}
	}
	return hex.EncodeToString(data)
}
