package cpu

import (
	"testing"

	"github.com/born-ml/logos/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRowwiseBias(t *testing.T) {
	out, err := tensor.FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	require.NoError(t, AddRowwiseBias([]float32{10, 20, 30}, out))
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.Data())
}

func TestAddRowwiseBias_ShapeMismatch(t *testing.T) {
	out, err := tensor.FromSlice(1, 2, []float32{1, 2})
	require.NoError(t, err)

	err = AddRowwiseBias([]float32{1, 2, 3}, out)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
	assert.Equal(t, []float32{1, 2}, out.Data(), "output must be unchanged on error")
}

func TestSumRows(t *testing.T) {
	a, err := tensor.FromSlice(3, 2, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	vec := SumRows(a, nil)
	assert.Equal(t, []float32{9, 12}, vec)

	t.Run("reuses and zeroes", func(t *testing.T) {
		stale := []float32{100, 100, 100}
		got := SumRows(a, stale)
		assert.Equal(t, []float32{9, 12}, got)
		assert.Same(t, &stale[0], &got[0])
	})

	t.Run("empty rows", func(t *testing.T) {
		var empty tensor.Matrix
		require.NoError(t, empty.Ensure(0, 4))
		assert.Equal(t, []float32{0, 0, 0, 0}, SumRows(&empty, nil))
	})
}

func TestAxpy(t *testing.T) {
	y := []float32{1, 1, 1}
	require.NoError(t, Axpy(-0.5, []float32{2, 4, 6}, y))
	assert.Equal(t, []float32{0, -1, -2}, y)

	require.ErrorIs(t, Axpy(1, []float32{1}, y), tensor.ErrShapeMismatch)
}

func TestReLU(t *testing.T) {
	in, err := tensor.FromSlice(2, 2, []float32{-1, 2, 0, 3})
	require.NoError(t, err)

	var out tensor.Matrix
	mask, err := ReLU(in, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2, 0, 3}, out.Data())
	assert.Equal(t, []bool{false, true, false, true}, mask)

	grad, err := tensor.FromSlice(2, 2, []float32{5, 6, 7, 8})
	require.NoError(t, err)
	var dx tensor.Matrix
	require.NoError(t, ReLUBackward(grad, mask, &dx))
	assert.Equal(t, []float32{0, 6, 0, 8}, dx.Data())

	short, err := tensor.NewMatrix(1, 2)
	require.NoError(t, err)
	require.ErrorIs(t, ReLUBackward(short, mask, &dx), tensor.ErrShapeMismatch)
}
