// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import (
	"bytes"
	"io"
	"math"
)

// eagerLimit bounds how much ReadExact preallocates before any byte has
// been seen. Larger reads grow the buffer as data actually arrives.
const eagerLimit = 1 << 20

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToUint32 converts an int to uint32, returning overflowErr if it doesn't fit.
func ToUint32(size int, overflowErr error) (uint32, error) {
	if size < 0 || uint64(size) > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// ReadExact reads exactly n bytes from r.
// Returns shortErr if r ends first. The buffer only grows as bytes arrive,
// so a corrupt length cannot force a huge allocation.
func ReadExact(r io.Reader, n uint64, shortErr error) ([]byte, error) {
	if n > uint64(math.MaxInt64) {
		return nil, shortErr
	}
	if n <= eagerLimit {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, shortErr
			}
			return nil, err
		}
		return buf, nil
	}
	var buf bytes.Buffer
	buf.Grow(eagerLimit)
	got, err := buf.ReadFrom(io.LimitReader(r, int64(n))) //nolint:gosec // checked above
	if err != nil {
		return nil, err
	}
	if uint64(got) != n { //nolint:gosec // ReadFrom never returns a negative count
		return nil, shortErr
	}
	return buf.Bytes(), nil
}
