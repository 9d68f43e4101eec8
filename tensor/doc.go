// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense float32 matrices for the Logos training engine.
//
// # Overview
//
// A Matrix is a row-major rows×cols array of float32 values stored in a
// 64-byte aligned buffer. Element (i, j) lives at Data()[i*LeadingDim()+j].
//
// # Basic Usage
//
//	import "github.com/born-ml/logos/tensor"
//
//	func main() {
//	    x, err := tensor.FromRows([][]float32{
//	        {1, 2, 3},
//	        {4, 5, 6},
//	    })
//	    w, err := tensor.NewMatrix(3, 2)
//
//	    var out tensor.Matrix
//	    err = cpu.MatMul(x, w, &out) // out is allocated on first use
//	}
//
// # Storage Reuse
//
// The zero Matrix is an empty 0×0 matrix. Ensure resizes a matrix only when
// the requested shape differs, so outputs declared once are reused across
// training steps without further allocation.
//
// # Errors
//
// Shape problems are reported with ErrShapeMismatch and can be matched with
// errors.Is.
package tensor
