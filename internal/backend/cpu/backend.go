// Package cpu implements the dense float32 kernels of the training engine.
//
// Every kernel is a plain function over *tensor.Matrix. Output matrices are
// resized with Matrix.Ensure, so callers keep one output per call site and the
// kernels allocate only on the first call or when the batch shape changes.
// Kernels never run concurrently and never retain their arguments.
//
// Outputs must not alias inputs.
package cpu
