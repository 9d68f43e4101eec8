package nn

import (
	"fmt"

	"github.com/born-ml/logos/internal/backend/cpu"
	"github.com/born-ml/logos/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation layer.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Forward records which inputs were positive; Backward passes the upstream
// gradient through those positions and zeroes the rest. Only the mask is kept,
// so ReLU never references the caller's input after Forward returns.
type ReLU struct {
	mask       []bool
	rows, cols int
	ready      bool
}

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input, output *tensor.Matrix) error {
	mask, err := cpu.ReLU(input, output, r.mask)
	r.mask = mask
	if err != nil {
		r.ready = false
		return fmt.Errorf("ReLU.Forward: %w", err)
	}

	r.rows, r.cols = input.Rows(), input.Cols()
	r.ready = true
	return nil
}

// Backward computes inGrad = outGrad where the input was positive, else 0.
func (r *ReLU) Backward(outGrad, inGrad *tensor.Matrix) error {
	if !r.ready {
		return ErrPrecededForwardRequired
	}
	if !outGrad.HasShape(r.rows, r.cols) {
		return fmt.Errorf("%w: ReLU.Backward expected gradient [%d×%d], got %v",
			tensor.ErrShapeMismatch, r.rows, r.cols, outGrad.Shape())
	}
	if err := cpu.ReLUBackward(outGrad, r.mask, inGrad); err != nil {
		return fmt.Errorf("ReLU.Backward: %w", err)
	}
	return nil
}

// ZeroGrads is a no-op: ReLU has no parameters.
func (r *ReLU) ZeroGrads() {}

// GradientDescentStep is a no-op: ReLU has no parameters.
func (r *ReLU) GradientDescentStep(float32) {}
