package tensor

import (
	"fmt"

	"github.com/born-ml/logos/internal/memory"
)

// elemSize is the byte size of the single element type used across the engine.
const elemSize = 4

// noCopy makes go vet flag accidental copies of Matrix values.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Matrix is a dense, row-major float32 matrix backed by an aligned buffer.
//
// Rows are contiguous: element (i, j) lives at Data()[i*LeadingDim()+j] and
// LeadingDim() equals Cols(). A Matrix either owns its buffer or, when created
// with NewScratch, borrows memory from an arena and is valid until that arena
// is reset.
//
// The zero value is an empty 0×0 matrix that kernels grow on demand, so
// output matrices can be declared once and reused across training steps:
//
//	var out tensor.Matrix
//	for batch := range batches {
//	    cpu.MatMul(x, w, &out) // allocates on first use or shape change only
//	}
type Matrix struct {
	_ noCopy

	rows      int
	cols      int
	ld        int
	alignment int
	buf       *memory.Buffer // nil for arena-backed scratch
	data      []float32      // rows*cols elements
}

// NewMatrix allocates a zeroed rows×cols matrix with DefaultAlignment.
func NewMatrix(rows, cols int) (*Matrix, error) {
	return NewMatrixAligned(rows, cols, memory.DefaultAlignment)
}

// NewMatrixAligned allocates a zeroed rows×cols matrix whose storage is aligned to alignment.
func NewMatrixAligned(rows, cols, alignment int) (*Matrix, error) {
	m := &Matrix{alignment: alignment}
	if err := m.reallocate(rows, cols); err != nil {
		return nil, err
	}
	return m, nil
}

// NewScratch lays a rows×cols matrix over memory carved from arena.
// The returned matrix does not own its storage and is not zeroed.
func NewScratch(arena *memory.Arena, rows, cols int) (*Matrix, error) {
	m := new(Matrix)
	if err := m.Rebind(arena, rows, cols); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebind drops m's storage and lays it over rows×cols elements carved from
// arena, like NewScratch but without allocating a new Matrix. Callers that
// reset an arena every step rebind the same matrix to it. On error m is unchanged.
func (m *Matrix) Rebind(arena *memory.Arena, rows, cols int) error {
	if rows < 0 || cols < 0 {
		return (Shape{rows, cols}).Validate()
	}
	data, err := memory.Allocate[float32](arena, rows*cols, arena.Alignment())
	if err != nil {
		return fmt.Errorf("scratch matrix %v: %w", Shape{rows, cols}, err)
	}

	m.buf = nil
	m.rows, m.cols, m.ld = rows, cols, cols
	m.alignment = arena.Alignment()
	m.data = data
	return nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// LeadingDim returns the stride between successive rows.
func (m *Matrix) LeadingDim() int { return m.ld }

// Len returns rows×cols.
func (m *Matrix) Len() int { return m.rows * m.cols }

// Shape returns {rows, cols}.
func (m *Matrix) Shape() Shape { return Shape{m.rows, m.cols} }

// Empty reports whether either dimension is zero.
func (m *Matrix) Empty() bool { return m.rows == 0 || m.cols == 0 }

// Alignment returns the storage alignment in bytes.
func (m *Matrix) Alignment() int {
	if m.alignment == 0 {
		return memory.DefaultAlignment
	}
	return m.alignment
}

// SizeBytes returns the size of the backing storage in bytes.
func (m *Matrix) SizeBytes() int {
	if m.buf != nil {
		return m.buf.Len()
	}
	return len(m.data) * elemSize
}

// Owned reports whether the matrix owns its storage.
func (m *Matrix) Owned() bool { return m.buf != nil }

// Data returns the row-major elements.
// WARNING: the slice aliases the matrix storage and is invalidated by Ensure and Release.
func (m *Matrix) Data() []float32 { return m.data }

// At returns element (row, col). Indices are not validated beyond Go's slice bounds check.
func (m *Matrix) At(row, col int) float32 {
	return m.data[row*m.ld+col]
}

// Set stores v at (row, col). Indices are not validated beyond Go's slice bounds check.
func (m *Matrix) Set(row, col int, v float32) {
	m.data[row*m.ld+col] = v
}

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.ld : i*m.ld+m.cols]
}

// FillZeroes zeroes every element.
func (m *Matrix) FillZeroes() {
	clear(m.data)
}

// SameShape reports whether m and other have identical dimensions.
func (m *Matrix) SameShape(other *Matrix) bool {
	return m.rows == other.rows && m.cols == other.cols
}

// HasShape reports whether m is rows×cols.
func (m *Matrix) HasShape(rows, cols int) bool {
	return m.rows == rows && m.cols == cols
}

// Ensure makes m a rows×cols matrix. Storage is reused untouched when the shape
// already matches; otherwise a fresh zeroed, owned buffer is allocated.
func (m *Matrix) Ensure(rows, cols int) error {
	if m.HasShape(rows, cols) {
		return nil
	}
	return m.reallocate(rows, cols)
}

func (m *Matrix) reallocate(rows, cols int) error {
	shape := Shape{rows, cols}
	if err := shape.Validate(); err != nil {
		return err
	}

	buf, err := memory.NewBuffer(rows*cols*elemSize, m.Alignment())
	if err != nil {
		return fmt.Errorf("matrix %v: %w", shape, err)
	}

	m.buf = buf
	m.rows, m.cols, m.ld = rows, cols, cols
	m.data = buf.AsFloat32()
	return nil
}

// Clone returns an owned deep copy of m.
func (m *Matrix) Clone() (*Matrix, error) {
	c, err := NewMatrixAligned(m.rows, m.cols, m.Alignment())
	if err != nil {
		return nil, err
	}
	copy(c.data, m.data)
	return c, nil
}

// CopyFrom resizes m to src's shape and copies its elements.
func (m *Matrix) CopyFrom(src *Matrix) error {
	if err := m.Ensure(src.rows, src.cols); err != nil {
		return err
	}
	copy(m.data, src.data)
	return nil
}

// Transpose returns a new matrix holding mᵗ.
func (m *Matrix) Transpose() (*Matrix, error) {
	t, err := NewMatrixAligned(m.cols, m.rows, m.Alignment())
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.data[j*t.ld+i] = m.data[i*m.ld+j]
		}
	}
	return t, nil
}

// Move transfers m's storage to a new Matrix and leaves m empty.
func (m *Matrix) Move() *Matrix {
	moved := &Matrix{
		rows:      m.rows,
		cols:      m.cols,
		ld:        m.ld,
		alignment: m.alignment,
		data:      m.data,
	}
	if m.buf != nil {
		moved.buf = m.buf.Move()
	}
	m.Release()
	return moved
}

// Release drops the storage and resets m to 0×0.
func (m *Matrix) Release() {
	if m.buf != nil {
		m.buf.Release()
	}
	m.buf, m.data = nil, nil
	m.rows, m.cols, m.ld = 0, 0, 0
}

// String returns a short description such as "Matrix[2×3]".
func (m *Matrix) String() string {
	return "Matrix" + m.Shape().String()
}
