package tensor

import (
	"testing"
	"unsafe"

	"github.com/born-ml/logos/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix(3, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Equal(t, 4, m.LeadingDim())
	assert.Equal(t, 12, m.Len())
	assert.Equal(t, 48, m.SizeBytes())
	assert.True(t, m.Owned())
	assert.Equal(t, Shape{3, 4}, m.Shape())
	for _, v := range m.Data() {
		assert.Zero(t, v)
	}

	addr := uintptr(unsafe.Pointer(&m.Data()[0]))
	assert.Zero(t, addr%memory.DefaultAlignment)
}

func TestNewMatrix_Invalid(t *testing.T) {
	_, err := NewMatrix(-1, 2)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = NewMatrixAligned(2, 2, 3)
	require.ErrorIs(t, err, memory.ErrInvalidAlignment)
}

func TestNewMatrix_ZeroDims(t *testing.T) {
	m, err := NewMatrix(0, 5)
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Equal(t, 0, m.SizeBytes())
}

func TestMatrix_RowMajorIndexing(t *testing.T) {
	m, err := FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, float32(2), m.At(0, 1))
	assert.Equal(t, float32(4), m.At(1, 0))
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1))

	m.Set(1, 2, 9)
	assert.Equal(t, float32(9), m.Data()[5])
}

func TestFromSlice_WrongLength(t *testing.T) {
	_, err := FromSlice(2, 2, []float32{1, 2, 3})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, m.Shape())
	assert.Equal(t, float32(6), m.At(2, 1))

	_, err = FromRows([][]float32{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMatrix_EnsureReusesStorage(t *testing.T) {
	var m Matrix
	require.NoError(t, m.Ensure(4, 8))
	first := &m.Data()[0]
	m.Data()[3] = 42

	require.NoError(t, m.Ensure(4, 8))
	assert.Same(t, first, &m.Data()[0], "matching shape must reuse storage")
	assert.Equal(t, float32(42), m.Data()[3], "reuse must not clear contents")

	require.NoError(t, m.Ensure(2, 8))
	assert.Equal(t, Shape{2, 8}, m.Shape())
	assert.Zero(t, m.Data()[3], "reallocation yields zeroed storage")
}

func TestMatrix_CloneIsDeep(t *testing.T) {
	m, err := FromSlice(1, 3, []float32{1, 2, 3})
	require.NoError(t, err)

	c, err := m.Clone()
	require.NoError(t, err)
	c.Set(0, 0, 100)

	assert.Equal(t, float32(1), m.At(0, 0))
	assert.Equal(t, float32(100), c.At(0, 0))
}

func TestMatrix_Transpose(t *testing.T) {
	m, err := FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	tr, err := m.Transpose()
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, tr.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr.Data())
}

func TestMatrix_Move(t *testing.T) {
	m, err := FromSlice(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	first := &m.Data()[0]

	moved := m.Move()

	assert.True(t, m.Empty())
	assert.Nil(t, m.Data())
	assert.Equal(t, Shape{2, 2}, moved.Shape())
	assert.Same(t, first, &moved.Data()[0])
	assert.Equal(t, float32(4), moved.At(1, 1))
}

func TestMatrix_CopyFrom(t *testing.T) {
	src, err := FromSlice(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	var dst Matrix
	require.NoError(t, dst.CopyFrom(src))
	assert.Equal(t, src.Data(), dst.Data())
}

func TestNewScratch(t *testing.T) {
	arena, err := memory.NewArena(1024, memory.DefaultAlignment)
	require.NoError(t, err)

	a, err := NewScratch(arena, 2, 3)
	require.NoError(t, err)
	b, err := NewScratch(arena, 4, 4)
	require.NoError(t, err)

	assert.False(t, a.Owned())
	assert.Equal(t, Shape{4, 4}, b.Shape())
	assert.Zero(t, uintptr(unsafe.Pointer(&b.Data()[0]))%memory.DefaultAlignment)
	assert.Equal(t, 64+64, arena.Used())

	_, err = NewScratch(arena, 100, 100)
	require.ErrorIs(t, err, memory.ErrOutOfMemory)
}

func TestShape(t *testing.T) {
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.Equal(t, "[2×3]", Shape{2, 3}.String())
	require.ErrorIs(t, Shape{2}.Validate(), ErrShapeMismatch)
}

func TestFull(t *testing.T) {
	m, err := Full(2, 2, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 1.5, 1.5, 1.5}, m.Data())
}

func TestMatrix_Rebind(t *testing.T) {
	arena, err := memory.NewArena(256, memory.DefaultAlignment)
	require.NoError(t, err)

	var m Matrix
	require.NoError(t, m.Rebind(arena, 2, 3))
	first := &m.Data()[0]

	arena.Reset()
	require.NoError(t, m.Rebind(arena, 2, 3))
	assert.Same(t, first, &m.Data()[0], "same arena offset yields the same region")
	assert.False(t, m.Owned())

	require.ErrorIs(t, m.Rebind(arena, 100, 100), memory.ErrOutOfMemory)
	assert.Equal(t, Shape{2, 3}, m.Shape(), "failed rebind leaves the matrix unchanged")

	require.ErrorIs(t, m.Rebind(arena, -1, 2), ErrShapeMismatch)
}
