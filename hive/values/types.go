package values

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Type is a registry value type code.
type Type uint32

const (
	None                     Type = 0
	String                   Type = 1 // REG_SZ
	ExpandString             Type = 2 // REG_EXPAND_SZ
	Binary                   Type = 3
	DWORD                    Type = 4 // little-endian
	DWORDBigEndian           Type = 5
	Link                     Type = 6
	MultiString              Type = 7
	ResourceList             Type = 8
	FullResourceDescriptor   Type = 9
	ResourceRequirementsList Type = 10
	QWORD                    Type = 11
)

var typeNames = map[Type]string{
	None:                     "REG_NONE",
	String:                   "REG_SZ",
	ExpandString:             "REG_EXPAND_SZ",
	Binary:                   "REG_BINARY",
	DWORD:                    "REG_DWORD",
	DWORDBigEndian:           "REG_DWORD_BIG_ENDIAN",
	Link:                     "REG_LINK",
	MultiString:              "REG_MULTI_SZ",
	ResourceList:             "REG_RESOURCE_LIST",
	FullResourceDescriptor:   "REG_FULL_RESOURCE_DESCRIPTOR",
	ResourceRequirementsList: "REG_RESOURCE_REQUIREMENTS_LIST",
	QWORD:                    "REG_QWORD",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("REG_0x%X", uint32(t))
}

// IsDWORD reports whether t is one of the 32-bit integer types, which new
// values store inline.
func (t Type) IsDWORD() bool {
	return t == DWORD || t == DWORDBigEndian
}

// order is the byte order of dword payloads of type t.
func (t Type) order() binary.ByteOrder {
	if t == DWORDBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsString reports whether t carries UTF-16 text.
func (t Type) IsString() bool {
	return t == String || t == ExpandString || t == Link
}

// ParseType accepts a REG_* name (with or without the prefix, any case) or
// a decimal/hex type code.
func ParseType(s string) (Type, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(up, "REG_") {
		if n, err := strconv.ParseUint(up, 0, 32); err == nil {
			return Type(n), nil
		}
		up = "REG_" + up
	}
	for t, name := range typeNames {
		if name == up {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}
