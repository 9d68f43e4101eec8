// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/logos/internal/backend/cpu"
	"github.com/born-ml/logos/tensor"
)

// MatMul computes out = a·b for (N, K) @ (K, M) -> (N, M).
func MatMul(a, b, out *tensor.Matrix) error {
	return internalcpu.MatMul(a, b, out)
}

// MatMulTransposeA computes out = aᵗ·b for (N, M)ᵗ @ (N, P) -> (M, P).
func MatMulTransposeA(a, b, out *tensor.Matrix) error {
	return internalcpu.MatMulTransposeA(a, b, out)
}

// MatMulTransposeB computes out = a·bᵗ for (N, M) @ (P, M)ᵗ -> (N, P).
func MatMulTransposeB(a, b, out *tensor.Matrix) error {
	return internalcpu.MatMulTransposeB(a, b, out)
}

// AddRowwiseBias adds bias to every row of out in place.
func AddRowwiseBias(bias []float32, out *tensor.Matrix) error {
	return internalcpu.AddRowwiseBias(bias, out)
}

// SumRows returns the column-wise sum of a, reusing vec's storage when it is large enough.
func SumRows(a *tensor.Matrix, vec []float32) []float32 {
	return internalcpu.SumRows(a, vec)
}

// Axpy computes y += alpha * x.
func Axpy(alpha float32, x, y []float32) error {
	return internalcpu.Axpy(alpha, x, y)
}
