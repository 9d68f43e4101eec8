package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/logos/internal/backend/cpu"
	"github.com/born-ml/logos/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input matrix with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output matrix with shape [batch_size, out_features]
//
// Weights are He-initialized from a caller-supplied generator; biases start at zero.
//
// Forward keeps a non-owning reference to its input. The input matrix must not
// be modified or released until the matching Backward call has returned.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	layer, _ := nn.NewLinear(784, 128, rng, memory.DefaultAlignment)
//
//	var out tensor.Matrix
//	_ = layer.Forward(x, &out) // out: [batch, 128]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [in_features, out_features]
	bias        *Parameter // [1, out_features]

	input *tensor.Matrix // last Forward input, borrowed
}

// NewLinear creates a Linear layer whose weights are drawn from rng.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand, alignment int) (*Linear, error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, fmt.Errorf("%w: linear layer %d -> %d", tensor.ErrShapeMismatch, inFeatures, outFeatures)
	}

	weight, err := NewParameter("weight", inFeatures, outFeatures, alignment)
	if err != nil {
		return nil, err
	}
	bias, err := NewParameter("bias", 1, outFeatures, alignment)
	if err != nil {
		return nil, err
	}
	HeNormal(rng, inFeatures, weight.Value())

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}, nil
}

// Forward computes output = input @ W + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input, output *tensor.Matrix) error {
	if input.Cols() != l.inFeatures {
		return fmt.Errorf("%w: Linear.Forward expected %d input features, got %v",
			tensor.ErrShapeMismatch, l.inFeatures, input.Shape())
	}

	if err := cpu.MatMul(input, l.weight.Value(), output); err != nil {
		return fmt.Errorf("Linear.Forward: %w", err)
	}
	if err := cpu.AddRowwiseBias(l.bias.Value().Data(), output); err != nil {
		return fmt.Errorf("Linear.Forward: %w", err)
	}

	l.input = input
	return nil
}

// Backward computes the parameter gradients and the input gradient.
//
//	dW = xᵗ @ dY
//	db = column sums of dY
//	dX = dY @ Wᵗ
func (l *Linear) Backward(outGrad, inGrad *tensor.Matrix) error {
	if l.input == nil {
		return ErrPrecededForwardRequired
	}
	if !outGrad.HasShape(l.input.Rows(), l.outFeatures) {
		return fmt.Errorf("%w: Linear.Backward expected gradient [%d×%d], got %v",
			tensor.ErrShapeMismatch, l.input.Rows(), l.outFeatures, outGrad.Shape())
	}

	// The input gradient is the only step that may allocate; run it first so a
	// failure leaves the parameter gradients untouched.
	if err := cpu.MatMulTransposeB(outGrad, l.weight.Value(), inGrad); err != nil {
		return fmt.Errorf("Linear.Backward: %w", err)
	}
	if err := cpu.MatMulTransposeA(l.input, outGrad, l.weight.Grad()); err != nil {
		return fmt.Errorf("Linear.Backward: %w", err)
	}
	cpu.SumRows(outGrad, l.bias.Grad().Data())

	return nil
}

// ZeroGrads clears the weight and bias gradients.
func (l *Linear) ZeroGrads() {
	l.weight.ZeroGrad()
	l.bias.ZeroGrad()
}

// GradientDescentStep applies W -= rate*dW and b -= rate*db.
func (l *Linear) GradientDescentStep(rate float32) {
	l.weight.Step(rate)
	l.bias.Step(rate)
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
