// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/logos/internal/tensor"
)

// Matrix is a dense, row-major float32 matrix backed by an aligned buffer.
type Matrix = tensor.Matrix

// Shape holds the dimensions of a matrix as {rows, cols}.
type Shape = tensor.Shape

// Errors reported by matrix operations.
var (
	ErrShapeMismatch = tensor.ErrShapeMismatch
	ErrEmptyInput    = tensor.ErrEmptyInput
	ErrOutOfBounds   = tensor.ErrOutOfBounds
)

// NewMatrix allocates a zeroed rows×cols matrix with 64-byte alignment.
func NewMatrix(rows, cols int) (*Matrix, error) {
	return tensor.NewMatrix(rows, cols)
}

// NewMatrixAligned allocates a zeroed rows×cols matrix aligned to alignment bytes.
// alignment must be a power of two.
func NewMatrixAligned(rows, cols, alignment int) (*Matrix, error) {
	return tensor.NewMatrixAligned(rows, cols, alignment)
}

// FromSlice creates a rows×cols matrix holding a copy of values.
//
// Example:
//
//	m, err := tensor.FromSlice(2, 2, []float32{1, 2, 3, 4})
func FromSlice(rows, cols int, values []float32) (*Matrix, error) {
	return tensor.FromSlice(rows, cols, values)
}

// FromRows creates a matrix from equally long rows.
func FromRows(rows [][]float32) (*Matrix, error) {
	return tensor.FromRows(rows)
}

// Full creates a rows×cols matrix with every element set to value.
func Full(rows, cols int, value float32) (*Matrix, error) {
	return tensor.Full(rows, cols, value)
}
