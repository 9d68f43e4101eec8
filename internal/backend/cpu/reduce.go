package cpu

import (
	"fmt"

	"github.com/born-ml/logos/internal/tensor"
)

// AddRowwiseBias broadcast-adds bias to every row of out in place.
func AddRowwiseBias(bias []float32, out *tensor.Matrix) error {
	if len(bias) != out.Cols() {
		return fmt.Errorf("%w: bias length %d for output %v", tensor.ErrShapeMismatch, len(bias), out.Shape())
	}

	for i := 0; i < out.Rows(); i++ {
		row := out.Row(i)
		for j, b := range bias {
			row[j] += b
		}
	}
	return nil
}

// SumRows reduces a over its rows, producing the column-wise sum of length
// a.Cols(). The result is written into vec, which is resized and zeroed first;
// pass the previous result to reuse its storage.
//
// Example:
//
//	a = [[1, 2],
//	     [3, 4]]
//	SumRows(a, nil) = [4, 6]
func SumRows(a *tensor.Matrix, vec []float32) []float32 {
	m := a.Cols()
	if cap(vec) >= m {
		vec = vec[:m]
	} else {
		vec = make([]float32, m)
	}
	clear(vec)

	for i := 0; i < a.Rows(); i++ {
		for j, v := range a.Row(i) {
			vec[j] += v
		}
	}
	return vec
}

// Axpy computes y += alpha * x elementwise.
func Axpy(alpha float32, x, y []float32) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: axpy length %d vs %d", tensor.ErrShapeMismatch, len(x), len(y))
	}
	for i, v := range x {
		y[i] += alpha * v
	}
	return nil
}
