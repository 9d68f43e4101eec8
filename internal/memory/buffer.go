package memory

// noCopy makes go vet flag accidental copies of the structs embedding it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Buffer is an exclusively owned, aligned block of raw memory.
//
// The zero value is an empty buffer with DefaultAlignment. Buffers are
// passed by pointer; Move hands the allocation to a new owner and leaves
// the source empty.
type Buffer struct {
	_ noCopy

	raw       []byte // backing allocation, keeps data reachable
	data      []byte // aligned window of exactly Len() bytes
	alignment int
}

// NewBuffer allocates size bytes aligned to alignment.
//
// Returns ErrInvalidAlignment if alignment is not a power of two or is smaller
// than PointerAlignment, and ErrAllocationFailure if the request cannot be
// satisfied. A zero size yields an empty buffer.
func NewBuffer(size, alignment int) (*Buffer, error) {
	b := &Buffer{alignment: DefaultAlignment}
	if err := b.Reset(size, alignment); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset releases the current allocation and allocates size fresh bytes.
// On error the buffer keeps its previous contents.
func (b *Buffer) Reset(size, alignment int) error {
	if err := validateAlignment(alignment); err != nil {
		return err
	}
	if size < 0 {
		return errNegativeSize(size)
	}

	if size == 0 {
		b.Release()
		b.alignment = alignment
		return nil
	}

	raw, data, err := alignedAlloc(size, alignment)
	if err != nil {
		return err
	}

	b.raw, b.data, b.alignment = raw, data, alignment
	return nil
}

// Len returns the usable size in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Alignment returns the alignment the buffer was allocated with.
func (b *Buffer) Alignment() int {
	if b.alignment == 0 {
		return DefaultAlignment
	}
	return b.alignment
}

// Bytes returns the aligned memory.
// WARNING: the slice aliases the buffer and is invalidated by Reset, Move and Release.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// AsFloat32 interprets the buffer as []float32.
func (b *Buffer) AsFloat32() []float32 {
	return Cast[float32](b.data)
}

// FillZeroes zeroes the full extent of the buffer.
func (b *Buffer) FillZeroes() {
	clear(b.data)
}

// Move transfers the allocation to a new Buffer and empties b.
func (b *Buffer) Move() *Buffer {
	moved := &Buffer{raw: b.raw, data: b.data, alignment: b.Alignment()}
	b.raw, b.data, b.alignment = nil, nil, DefaultAlignment
	return moved
}

// Release drops the allocation. Calling it more than once is a no-op.
func (b *Buffer) Release() {
	b.raw, b.data = nil, nil
}
