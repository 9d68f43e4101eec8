// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go matrix kernels used by the training engine.
//
// # Overview
//
// Kernels are plain functions over *tensor.Matrix values:
//   - MatMul and its transposed variants for Linear layers
//   - AddRowwiseBias and SumRows for bias forward and backward passes
//   - Axpy for parameter updates
//
// Outputs are resized in place and must not alias any input.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/logos/backend/cpu"
//	    "github.com/born-ml/logos/tensor"
//	)
//
//	func main() {
//	    a, _ := tensor.FromRows([][]float32{{1, 2, 3}, {4, 5, 6}})
//	    b, _ := tensor.FromRows([][]float32{{7, 8}, {9, 10}, {11, 12}})
//
//	    var c tensor.Matrix
//	    if err := cpu.MatMul(a, b, &c); err != nil {
//	        log.Fatal(err)
//	    }
//	    // c = [[58, 64], [139, 154]]
//	}
package cpu
