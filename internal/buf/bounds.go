package buf

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a requested byte range does not fit the buffer.
var ErrOutOfBounds = errors.New("buf: range out of bounds")

// addInt adds a and b, reporting false when the sum overflows.
func addInt(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

// mulInt multiplies two non-negative ints, reporting false on overflow or a
// negative operand.
func mulInt(a, b int) (int, bool) {
	switch {
	case a < 0 || b < 0:
		return 0, false
	case a == 0 || b == 0:
		return 0, true
	case a > math.MaxInt/b:
		return 0, false
	}
	return a * b, true
}

// ListEnd checks that count entries of elemSize bytes starting at off fit in
// a buffer of bufLen bytes and returns the end offset. Index and value lists
// carry an untrusted count, so this is the gate before any entry is read.
func ListEnd(bufLen, off, count, elemSize int) (int, error) {
	if off < 0 || count < 0 || elemSize < 0 {
		return 0, fmt.Errorf("%w: off=%d count=%d elem=%d", ErrOutOfBounds, off, count, elemSize)
	}
	total, ok := mulInt(count, elemSize)
	if !ok {
		return 0, fmt.Errorf("%w: %d entries of %d bytes", ErrOutOfBounds, count, elemSize)
	}
	end, ok := addInt(off, total)
	if !ok || end > bufLen {
		return 0, fmt.Errorf("%w: list [%d:+%d] of %d", ErrOutOfBounds, off, total, bufLen)
	}
	return end, nil
}

// Slice returns b[off:off+n] with its capacity clipped, or false when the
// range does not fit.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := addInt(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}
