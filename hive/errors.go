package hive

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptHeader indicates a bad base block: wrong magic, too small, or no pages.
	ErrCorruptHeader = errors.New("hive: corrupt header")
	// ErrCorruptRecord indicates a record whose extent or structure is invalid.
	ErrCorruptRecord = errors.New("hive: corrupt record")
	// ErrZeroLengthCell indicates a cell with a zero length prefix.
	ErrZeroLengthCell = errors.New("hive: zero length cell")
	// ErrAllocationFailed indicates no free cell can satisfy a request. The
	// hive file is never grown.
	ErrAllocationFailed = errors.New("hive: allocation failed")
	// ErrDoubleFree indicates an attempt to free a free cell.
	ErrDoubleFree = errors.New("hive: double free")
	// ErrAlreadyExists indicates a key or value name collision.
	ErrAlreadyExists = errors.New("hive: already exists")
	// ErrNotFound indicates an unresolved path, key or value.
	ErrNotFound = errors.New("hive: not found")
	// ErrNotEmpty indicates a key that still has subkeys or values.
	ErrNotEmpty = errors.New("hive: key not empty")
	// ErrTypeMismatch indicates a value of another type than requested.
	ErrTypeMismatch = errors.New("hive: value type mismatch")

	// ErrReadOnly indicates a mutation on a hive opened read-only.
	ErrReadOnly = errors.New("hive: opened read-only")
	// ErrNoAlloc indicates allocator use while the hive is in no-allocate mode.
	ErrNoAlloc = errors.New("hive: allocation disabled")
	// ErrClosed indicates use of a closed hive.
	ErrClosed = errors.New("hive: closed")
	// ErrInvalidName indicates a key or value name that cannot be stored.
	ErrInvalidName = errors.New("hive: invalid name")
	// ErrNoSink indicates Write on a hive without backing storage.
	ErrNoSink = errors.New("hive: no sink to write to")
)

// RecordError reports a structural problem at a specific cell.
type RecordError struct {
	Ref  Ref
	What string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s at %#x: %v", e.What, uint32(e.Ref), e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// corrupt wraps cause under ErrCorruptRecord for the record at ref.
func corrupt(ref Ref, what string, cause error) error {
	if cause == nil {
		return &RecordError{Ref: ref, What: what, Err: ErrCorruptRecord}
	}
	return &RecordError{Ref: ref, What: what, Err: fmt.Errorf("%w: %w", ErrCorruptRecord, cause)}
}

// corruptf is corrupt with a formatted cause.
func corruptf(ref Ref, what, format string, args ...any) error {
	return corrupt(ref, what, fmt.Errorf(format, args...))
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
