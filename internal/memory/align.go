package memory

import (
	"fmt"
	"unsafe"
)

// DefaultAlignment is the alignment used when none is requested (one cache line).
const DefaultAlignment = 64

// PointerAlignment is the smallest alignment a Buffer accepts.
const PointerAlignment = int(unsafe.Alignof(uintptr(0)))

// maxAllocation caps a single request so size+alignment arithmetic cannot overflow.
const maxAllocation = 1 << 46

// Element is the set of pointer-free types that may be laid over raw buffer memory.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint32 | ~uint64 | ~uint8 | ~int8 | ~uint16 | ~int16
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp rounds n up to the next multiple of alignment, which must be a power of two.
func AlignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func validateAlignment(alignment int) error {
	if !IsPow2(alignment) {
		return fmt.Errorf("%w: %d is not a power of two", ErrInvalidAlignment, alignment)
	}
	if alignment < PointerAlignment {
		return fmt.Errorf("%w: %d is smaller than pointer alignment %d", ErrInvalidAlignment, alignment, PointerAlignment)
	}
	return nil
}

// addressOf returns the address of the first byte of b, or 0 for an empty slice.
func addressOf(b []byte) uintptr {
	if cap(b) == 0 {
		return 0
	}
	//nolint:gosec // address is only used for alignment arithmetic
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Cast reinterprets b as a slice of T. len(b) must be a multiple of the size of T
// and b must be suitably aligned for T.
func Cast[T Element](b []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(b) < size {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy views, bounds derived from len(b)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/size)
}

// alignedAlloc returns a backing allocation and a window of exactly size bytes
// starting at an address that is a multiple of alignment.
func alignedAlloc(size, alignment int) (raw, data []byte, err error) {
	if size > maxAllocation-alignment {
		return nil, nil, fmt.Errorf("%w: request of %d bytes exceeds limit", ErrAllocationFailure, size)
	}

	defer func() {
		if r := recover(); r != nil {
			raw, data = nil, nil
			err = fmt.Errorf("%w: %v", ErrAllocationFailure, r)
		}
	}()

	raw = make([]byte, size+alignment-1)
	off := 0
	if rem := int(addressOf(raw) & uintptr(alignment-1)); rem != 0 {
		off = alignment - rem
	}
	return raw, raw[off : off+size : off+size], nil
}
