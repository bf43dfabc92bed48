// Package verify checks the structural invariants of a loaded hive.
//
// It is used by tests after every mutation and by the check command of the
// CLI. All checks go through the public hive API; nothing here decodes cells
// on its own.
//
// # Quick Start
//
//	h, _ := hive.Open("SYSTEM", hive.Options{Mode: hive.ModeReadOnly})
//	if err := verify.AllInvariants(h); err != nil {
//	    fmt.Printf("invalid: %v\n", err)
//	}
//
// # Checks
//
//   - Header: base block signature, major version, checksum, sequence numbers
//   - Cells: every page walks to its end, cells are 8-byte aligned, and no two
//     neighbouring cells are both free
//   - Conservation: used bytes + free bytes + page headers equals the size of
//     all pages, and the tallies agree with a fresh walk
//   - Tree: every subkey index is strictly sorted by case-insensitive name,
//     subkey and value counts agree with what enumeration finds, and every
//     child points back at its parent
//
// # ValidationError
//
// Every failure is a *ValidationError naming the check, a message, and the
// offending reference when there is one:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s at %s: %s\n", verr.Type, verr.Ref, verr.Message)
//	}
package verify
