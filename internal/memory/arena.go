package memory

import (
	"fmt"
	"unsafe"
)

// Arena is a bump allocator over a single Buffer.
//
// Allocations advance a monotonically increasing offset; Reset rewinds it to
// zero and logically invalidates every region handed out before. Regions are
// not zeroed on allocation. An Arena is single-writer.
//
// Example:
//
//	arena, _ := memory.NewArena(1<<20, memory.DefaultAlignment)
//	for step := range steps {
//	    arena.Reset()
//	    scratch, _ := memory.Allocate[float32](arena, n, 0)
//	    ...
//	}
type Arena struct {
	_ noCopy

	buf    *Buffer
	offset int
}

// NewArena creates an arena of capacity bytes whose base is aligned to alignment.
func NewArena(capacity, alignment int) (*Arena, error) {
	buf, err := NewBuffer(capacity, alignment)
	if err != nil {
		return nil, fmt.Errorf("arena: %w", err)
	}
	return &Arena{buf: buf}, nil
}

// Reset rewinds the arena to offset zero without freeing memory.
func (a *Arena) Reset() {
	a.offset = 0
}

// Used returns the number of bytes consumed since the last Reset, including padding.
func (a *Arena) Used() int {
	return a.offset
}

// Capacity returns the arena size in bytes.
func (a *Arena) Capacity() int {
	return a.buf.Len()
}

// Remaining returns the number of bytes left before the arena is exhausted.
func (a *Arena) Remaining() int {
	return a.Capacity() - a.offset
}

// Alignment returns the alignment of the arena base.
func (a *Arena) Alignment() int {
	return a.buf.Alignment()
}

// AllocateBytes returns size bytes starting at the next offset whose address is
// a multiple of alignment. The offset is left unchanged on error.
func (a *Arena) AllocateBytes(size, alignment int) ([]byte, error) {
	if err := validateRegionAlignment(alignment); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, errNegativeSize(size)
	}

	mem := a.buf.Bytes()
	base := int(addressOf(mem))
	start := AlignUp(base+a.offset, alignment) - base
	end := start + size
	if end > len(mem) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			ErrOutOfMemory, size, start, len(mem))
	}

	a.offset = end
	return mem[start:end:end], nil
}

// Allocate returns count elements of T from the arena. An alignment of zero
// selects the natural alignment of T.
func Allocate[T Element](a *Arena, count, alignment int) ([]T, error) {
	var zero T
	if alignment == 0 {
		alignment = int(unsafe.Alignof(zero))
	}
	if count < 0 {
		return nil, errNegativeSize(count)
	}

	region, err := a.AllocateBytes(count*int(unsafe.Sizeof(zero)), alignment)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []T{}, nil
	}
	return Cast[T](region), nil
}

// validateRegionAlignment accepts any power of two; element alignment may be
// smaller than PointerAlignment.
func validateRegionAlignment(alignment int) error {
	if !IsPow2(alignment) {
		return fmt.Errorf("%w: %d is not a power of two", ErrInvalidAlignment, alignment)
	}
	return nil
}
