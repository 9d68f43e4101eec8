package cpu

import (
	"fmt"

	"github.com/born-ml/logos/internal/tensor"
)

// MatMul computes out = a·b.
// For 2D matrices: (N, K) @ (K, M) -> (N, M)
//
// out is resized with Ensure, so a zero-value Matrix is a valid target and a
// correctly shaped one is reused in place. Uses a naive O(N·K·M) loop.
func MatMul(a, b, out *tensor.Matrix) error {
	n, k := a.Rows(), a.Cols()
	kAlt, m := b.Rows(), b.Cols()

	if k != kAlt {
		return fmt.Errorf("%w: matmul %v @ %v", tensor.ErrShapeMismatch, a.Shape(), b.Shape())
	}
	if err := out.Ensure(n, m); err != nil {
		return fmt.Errorf("matmul: %w", err)
	}

	matmulFloat32(out.Data(), a.Data(), b.Data(), n, k, m)
	return nil
}

// MatMulTransposeA computes out = aᵗ·b without materializing aᵗ.
// (N, M)ᵗ @ (N, P) -> (M, P). Linear layers use it for the weight gradient.
func MatMulTransposeA(a, b, out *tensor.Matrix) error {
	n, m := a.Rows(), a.Cols()
	nAlt, p := b.Rows(), b.Cols()

	if n != nAlt {
		return fmt.Errorf("%w: matmul_transposeA %vᵗ @ %v", tensor.ErrShapeMismatch, a.Shape(), b.Shape())
	}
	if err := out.Ensure(m, p); err != nil {
		return fmt.Errorf("matmul_transposeA: %w", err)
	}

	matmulTransposeAFloat32(out.Data(), a.Data(), b.Data(), n, m, p)
	return nil
}

// MatMulTransposeB computes out = a·bᵗ without materializing bᵗ.
// (N, M) @ (P, M)ᵗ -> (N, P). Linear layers use it for the input gradient.
func MatMulTransposeB(a, b, out *tensor.Matrix) error {
	n, m := a.Rows(), a.Cols()
	p, mAlt := b.Rows(), b.Cols()

	if m != mAlt {
		return fmt.Errorf("%w: matmul_transposeB %v @ %vᵗ", tensor.ErrShapeMismatch, a.Shape(), b.Shape())
	}
	if err := out.Ensure(n, p); err != nil {
		return fmt.Errorf("matmul_transposeB: %w", err)
	}

	matmulTransposeBFloat32(out.Data(), a.Data(), b.Data(), n, m, p)
	return nil
}

// matmulFloat32 performs naive matrix multiplication.
// C[i,j] = sum_k A[i,k] * B[k,j]
func matmulFloat32(c, a, b []float32, n, k, m int) {
	clear(c)

	// i-k-j order keeps the inner loop streaming over contiguous rows of B and C.
	for i := 0; i < n; i++ {
		cRow := c[i*m : i*m+m]
		for kIdx := 0; kIdx < k; kIdx++ {
			aik := a[i*k+kIdx]
			bRow := b[kIdx*m : kIdx*m+m]
			for j, bkj := range bRow {
				cRow[j] += aik * bkj
			}
		}
	}
}

// matmulTransposeAFloat32 computes C[i,j] = sum_r A[r,i] * B[r,j]
// with A stored (n, m) and B stored (n, p).
func matmulTransposeAFloat32(c, a, b []float32, n, m, p int) {
	clear(c)

	for r := 0; r < n; r++ {
		aRow := a[r*m : r*m+m]
		bRow := b[r*p : r*p+p]
		for i, ari := range aRow {
			cRow := c[i*p : i*p+p]
			for j, brj := range bRow {
				cRow[j] += ari * brj
			}
		}
	}
}

// matmulTransposeBFloat32 computes C[i,j] = sum_k A[i,k] * B[j,k]
// with A stored (n, m) and B stored (p, m).
func matmulTransposeBFloat32(c, a, b []float32, n, m, p int) {
	for i := 0; i < n; i++ {
		aRow := a[i*m : i*m+m]
		for j := 0; j < p; j++ {
			bRow := b[j*m : j*m+m]
			sum := float32(0)
			for kIdx, aik := range aRow {
				sum += aik * bRow[kIdx]
			}
			c[i*p+j] = sum
		}
	}
}
