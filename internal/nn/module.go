// Package nn implements the layers, loss head and model of the training engine.
//
// This package provides:
//   - Layer interface: Forward, Backward, ZeroGrads, GradientDescentStep
//   - Linear: fully connected layer with He-initialized weights
//   - ReLU: elementwise rectifier storing only its sign mask
//   - Loss head: Softmax, CrossEntropy, ArgmaxRow and the fused SoftmaxCrossEntropy
//   - Sequential: ordered layers driving one mini-batch training step
//
// All numerics are float32. Layer gradients are derived by hand; there is no
// autodiff tape.
package nn

import (
	"github.com/born-ml/logos/internal/tensor"
)

// Layer is the unit of composition of a Sequential model.
//
// Forward and Backward write their result into a caller-provided matrix that
// is resized with Ensure, so callers can keep those matrices across steps.
type Layer interface {
	// Forward computes output from input. It caches what Backward needs and
	// invalidates any cache left by the previous Forward call.
	Forward(input, output *tensor.Matrix) error

	// Backward consumes the gradient of the loss with respect to this layer's
	// output and writes the gradient with respect to its input into inGrad.
	// Parameter gradients are overwritten, not accumulated across calls.
	Backward(outGrad, inGrad *tensor.Matrix) error

	// ZeroGrads resets the gradient accumulators to zero.
	ZeroGrads()

	// GradientDescentStep applies parameter -= rate * gradient in place.
	GradientDescentStep(rate float32)
}

// Parameterized is implemented by layers that own trainable parameters.
type Parameterized interface {
	Parameters() []*Parameter
}
