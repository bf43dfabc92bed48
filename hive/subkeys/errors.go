package subkeys

import "errors"

var (
	// ErrDuplicateKey indicates a case-insensitive name collision.
	ErrDuplicateKey = errors.New("subkeys: duplicate key name")

	// ErrNotFound indicates the requested key was not found.
	ErrNotFound = errors.New("subkeys: key not found")
)
