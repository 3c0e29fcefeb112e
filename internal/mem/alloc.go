package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer returned by this package.
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedFloat64 allocates a zeroed float64 slice of the given length with 64-byte alignment.
func AllocAlignedFloat64(n int) []float64 {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 8)
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), n) //nolint:gosec // unsafe is required for memory alignment
}

// AllocAlignedInt64 allocates a zeroed int64 slice of the given length with 64-byte alignment.
func AllocAlignedInt64(n int) []int64 {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 8)
	return unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), n) //nolint:gosec // unsafe is required for memory alignment
}
