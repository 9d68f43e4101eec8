package nn

import (
	"fmt"

	"github.com/born-ml/logos/internal/backend/cpu"
	"github.com/born-ml/logos/internal/tensor"
)

// Parameter is a trainable matrix together with its gradient accumulator.
//
// The gradient always has the same shape as the value. Vectors such as biases
// are stored as 1×n matrices so checkpoints treat every parameter alike.
type Parameter struct {
	name  string
	value *tensor.Matrix
	grad  *tensor.Matrix
}

// NewParameter allocates a zeroed rows×cols parameter and its gradient.
func NewParameter(name string, rows, cols, alignment int) (*Parameter, error) {
	value, err := tensor.NewMatrixAligned(rows, cols, alignment)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	grad, err := tensor.NewMatrixAligned(rows, cols, alignment)
	if err != nil {
		return nil, fmt.Errorf("parameter %q gradient: %w", name, err)
	}
	return &Parameter{name: name, value: value, grad: grad}, nil
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
func (p *Parameter) Value() *tensor.Matrix {
	return p.value
}

// Grad returns the gradient accumulator.
func (p *Parameter) Grad() *tensor.Matrix {
	return p.grad
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	p.grad.FillZeroes()
}

// Step applies value -= rate * grad.
func (p *Parameter) Step(rate float32) {
	// Shapes are fixed at construction, Axpy cannot fail here.
	_ = cpu.Axpy(-rate, p.grad.Data(), p.value.Data())
}

// Load copies src into the parameter value after checking its shape.
func (p *Parameter) Load(src *tensor.Matrix) error {
	if !p.value.SameShape(src) {
		return fmt.Errorf("%w: %s expected %v, got %v",
			tensor.ErrShapeMismatch, p.name, p.value.Shape(), src.Shape())
	}
	copy(p.value.Data(), src.Data())
	return nil
}
