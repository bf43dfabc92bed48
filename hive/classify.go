package hive

import (
	"strings"
)

// Class is the role of a hive, guessed from well-known keys.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassSystem
	ClassSoftware
	ClassSAM
	ClassSecurity
)

func (c Class) String() string {
	switch c {
	case ClassSystem:
		return "SYSTEM"
	case ClassSoftware:
		return "SOFTWARE"
	case ClassSAM:
		return "SAM"
	case ClassSecurity:
		return "SECURITY"
	}
	return "unknown"
}

const controlSetPrefix = "CONTROLSET"

// classify inspects the root for the keys each hive role is known to carry.
func (h *Hive) classify() Class {
	if _, err := h.Lookup(`\SAM\Domains\Account\Users`); err == nil {
		return ClassSAM
	}
	subs, _ := h.Subkeys(h.root)
	for _, ex := range subs {
		if strings.EqualFold(ex.Name, "SAM") {
			return ClassSAM
		}
	}
	for _, ex := range subs {
		if strings.HasPrefix(strings.ToUpper(ex.Name), controlSetPrefix) {
			return ClassSystem
		}
	}
	if _, err := h.Lookup("Policy"); err == nil {
		return ClassSecurity
	}
	if _, err := h.Lookup("Microsoft"); err == nil {
		return ClassSoftware
	}
	return ClassUnknown
}
