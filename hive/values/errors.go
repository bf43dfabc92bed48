package values

import "errors"

var (
	// ErrTruncated indicates a payload shorter than its type requires.
	ErrTruncated = errors.New("values: truncated data")

	// ErrWrongType indicates a decoder was applied to a payload of another type.
	ErrWrongType = errors.New("values: wrong value type")

	// ErrUnknownType indicates a type name that does not parse.
	ErrUnknownType = errors.New("values: unknown value type")
)
