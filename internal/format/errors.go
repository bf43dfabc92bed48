package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSanityLimit indicates a count or length beyond what a hive can hold.
	ErrSanityLimit = errors.New("format: sanity limit exceeded")
	// ErrUnencodable indicates a name that cannot be stored in the chosen encoding.
	ErrUnencodable = errors.New("format: name not encodable")
)
