package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/logos/internal/memory"
	"github.com/born-ml/logos/internal/tensor"
)

// MaxClasses is the largest class count a uint8 label can address.
const MaxClasses = 256

// MLPConfig configures a multi-layer perceptron built by NewMLP.
type MLPConfig struct {
	InputDim   int   // features per sample
	HiddenDims []int // one entry per hidden layer, at least one
	Classes    int   // output logits
	Alignment  int   // storage alignment in bytes (default: 64)
	Seed       int64 // parameter initialization seed
}

// NewMLP builds Linear → ReLU → … → Linear with one ReLU after every hidden Linear.
//
// Example:
//
//	model, err := nn.NewMLP(nn.MLPConfig{
//	    InputDim:   784,
//	    HiddenDims: []int{128},
//	    Classes:    10,
//	    Seed:       42,
//	})
func NewMLP(cfg MLPConfig) (*Sequential, error) {
	if cfg.Alignment == 0 {
		cfg.Alignment = memory.DefaultAlignment
	}
	if cfg.InputDim <= 0 || cfg.Classes <= 0 || len(cfg.HiddenDims) == 0 {
		return nil, fmt.Errorf("%w: mlp input %d, hidden %v, classes %d",
			tensor.ErrShapeMismatch, cfg.InputDim, cfg.HiddenDims, cfg.Classes)
	}

	if cfg.Classes > MaxClasses {
		return nil, fmt.Errorf("%w: %d classes, labels address at most %d", ErrLabelOutOfRange, cfg.Classes, MaxClasses)
	}

	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	rng := rand.New(rand.NewSource(cfg.Seed))

	var layers []Layer
	in := cfg.InputDim
	for _, hidden := range cfg.HiddenDims {
		linear, err := NewLinear(in, hidden, rng, cfg.Alignment)
		if err != nil {
			return nil, err
		}
		layers = append(layers, linear, NewReLU())
		in = hidden
	}

	head, err := NewLinear(in, cfg.Classes, rng, cfg.Alignment)
	if err != nil {
		return nil, err
	}
	layers = append(layers, head)

	return NewSequential(cfg.Alignment, layers...), nil
}
