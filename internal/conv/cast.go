package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

func overflow(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrOverflow}, args...)...)
}

// IntToUint32 narrows a length for a 32-bit header field.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, overflow("%d does not fit uint32", v)
	}
	return uint32(v), nil
}

// IntToUint64 rejects negative lengths.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, overflow("%d is negative", v)
	}
	return uint64(v), nil
}

// Int64ToInt converts an offset or length read from an archive.
func Int64ToInt(v int64) (int, error) {
	if v < 0 || uint64(v) > math.MaxInt {
		return 0, overflow("%d is not a valid length", v)
	}
	return int(v), nil
}

// MulInt multiplies two non-negative ints.
func MulInt(a, b int) (int, error) {
	switch {
	case a < 0 || b < 0:
		return 0, overflow("%d * %d has a negative operand", a, b)
	case a == 0 || b == 0:
		return 0, nil
	case a > math.MaxInt/b:
		return 0, overflow("%d * %d exceeds int", a, b)
	}
	return a * b, nil
}

// Product returns the number of items of shape. An empty shape holds one.
func Product(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		var err error
		if n, err = MulInt(n, d); err != nil {
			return 0, fmt.Errorf("shape %v: %w", shape, err)
		}
	}
	return n, nil
}
