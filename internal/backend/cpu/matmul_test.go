package cpu

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/logos/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

const epsilon = 1e-4

// randomMatrix returns the same values as a tensor.Matrix and a gonum Dense.
func randomMatrix(t *testing.T, rng *rand.Rand, rows, cols int) (*tensor.Matrix, *mat.Dense) {
	t.Helper()

	values := make([]float32, rows*cols)
	ref := make([]float64, rows*cols)
	for i := range values {
		values[i] = rng.Float32()*2 - 1
		ref[i] = float64(values[i])
	}

	m, err := tensor.FromSlice(rows, cols, values)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return m, mat.NewDense(rows, cols, ref)
}

func assertMatchesDense(t *testing.T, got *tensor.Matrix, want mat.Matrix) {
	t.Helper()

	rows, cols := want.Dims()
	if !got.HasShape(rows, cols) {
		t.Fatalf("Expected shape [%d×%d], got %v", rows, cols, got.Shape())
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(float64(got.At(i, j))-want.At(i, j)) > epsilon {
				t.Errorf("(%d,%d) = %f, expected %f", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestMatMul_Known(t *testing.T) {
	a, _ := tensor.FromSlice(2, 3, []float32{1, 2, 3, 4, 5, 6})
	b, _ := tensor.FromSlice(3, 2, []float32{7, 8, 9, 10, 11, 12})

	var out tensor.Matrix
	if err := MatMul(a, b, &out); err != nil {
		t.Fatalf("MatMul: %v", err)
	}

	expected := []float32{58, 64, 139, 154}
	for i, v := range expected {
		if out.Data()[i] != v {
			t.Errorf("out[%d] = %f, expected %f", i, out.Data()[i], v)
		}
	}
}

func TestMatMul_AgainstGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	shapes := []struct{ n, k, m int }{
		{1, 1, 1},
		{3, 4, 5},
		{7, 2, 9},
		{16, 16, 16},
		{5, 1, 3},
	}

	for _, s := range shapes {
		a, refA := randomMatrix(t, rng, s.n, s.k)
		b, refB := randomMatrix(t, rng, s.k, s.m)

		var out tensor.Matrix
		if err := MatMul(a, b, &out); err != nil {
			t.Fatalf("MatMul: %v", err)
		}

		var want mat.Dense
		want.Mul(refA, refB)
		assertMatchesDense(t, &out, &want)
	}
}

func TestMatMulTransposeA_AgainstGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for trial := 0; trial < 5; trial++ {
		n, m, p := 1+rng.Intn(8), 1+rng.Intn(8), 1+rng.Intn(8)
		a, refA := randomMatrix(t, rng, n, m)
		b, refB := randomMatrix(t, rng, n, p)

		var out tensor.Matrix
		if err := MatMulTransposeA(a, b, &out); err != nil {
			t.Fatalf("MatMulTransposeA: %v", err)
		}

		var want mat.Dense
		want.Mul(refA.T(), refB)
		assertMatchesDense(t, &out, &want)

		// Same result as transposing explicitly.
		at, err := a.Transpose()
		if err != nil {
			t.Fatalf("Transpose: %v", err)
		}
		var explicit tensor.Matrix
		if err := MatMul(at, b, &explicit); err != nil {
			t.Fatalf("MatMul: %v", err)
		}
		assertMatchesDense(t, &explicit, &want)
	}
}

func TestMatMulTransposeB_AgainstGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 5; trial++ {
		n, m, p := 1+rng.Intn(8), 1+rng.Intn(8), 1+rng.Intn(8)
		a, refA := randomMatrix(t, rng, n, m)
		b, refB := randomMatrix(t, rng, p, m)

		var out tensor.Matrix
		if err := MatMulTransposeB(a, b, &out); err != nil {
			t.Fatalf("MatMulTransposeB: %v", err)
		}

		var want mat.Dense
		want.Mul(refA, refB.T())
		assertMatchesDense(t, &out, &want)
	}
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	a, _ := tensor.NewMatrix(2, 3)
	b, _ := tensor.NewMatrix(4, 2)
	var out tensor.Matrix

	if err := MatMul(a, b, &out); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("MatMul: expected ErrShapeMismatch, got %v", err)
	}
	if err := MatMulTransposeA(a, b, &out); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("MatMulTransposeA: expected ErrShapeMismatch, got %v", err)
	}
	if err := MatMulTransposeB(a, b, &out); !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("MatMulTransposeB: expected ErrShapeMismatch, got %v", err)
	}
	if !out.Empty() {
		t.Errorf("failed kernels must leave the output untouched, got %v", out.Shape())
	}
}

func TestMatMul_ReusesOutput(t *testing.T) {
	a, _ := tensor.FromSlice(2, 2, []float32{1, 0, 0, 1})
	b, _ := tensor.FromSlice(2, 2, []float32{1, 2, 3, 4})

	var out tensor.Matrix
	if err := MatMul(a, b, &out); err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	first := &out.Data()[0]

	// Second call must overwrite, not accumulate on top of the first result.
	if err := MatMul(a, b, &out); err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	if &out.Data()[0] != first {
		t.Error("output storage was reallocated for an unchanged shape")
	}
	if out.At(1, 1) != 4 {
		t.Errorf("out(1,1) = %f, expected 4", out.At(1, 1))
	}
}
