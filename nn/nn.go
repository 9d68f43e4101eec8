// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/logos/internal/nn"
	"github.com/born-ml/logos/internal/tensor"
)

// Layer is a differentiable stage of a model.
type Layer = nn.Layer

// Parameterized is implemented by layers that own trainable parameters.
type Parameterized = nn.Parameterized

// Parameter is a trainable matrix paired with its gradient accumulator.
type Parameter = nn.Parameter

// NewParameter creates a zeroed rows×cols parameter.
func NewParameter(name string, rows, cols, alignment int) (*Parameter, error) {
	return nn.NewParameter(name, rows, cols, alignment)
}

// Layers

// Linear is a fully connected layer computing y = x·W + b.
type Linear = nn.Linear

// NewLinear creates a linear layer with He-initialized weights drawn from rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(123))
//	layer, err := nn.NewLinear(784, 256, rng, 64)
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand, alignment int) (*Linear, error) {
	return nn.NewLinear(inFeatures, outFeatures, rng, alignment)
}

// ReLU is the rectified linear activation max(0, x).
type ReLU = nn.ReLU

// NewReLU creates a ReLU layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// HeNormal fills m with samples from N(0, 2/fanIn).
func HeNormal(rng *rand.Rand, fanIn int, m *tensor.Matrix) {
	nn.HeNormal(rng, fanIn, m)
}

// Models

// Sequential chains layers and drives mini-batch gradient descent over them.
type Sequential = nn.Sequential

// NewSequential creates a model from layers applied in order.
func NewSequential(alignment int, layers ...Layer) *Sequential {
	return nn.NewSequential(alignment, layers...)
}

// MLPConfig describes a multilayer perceptron.
type MLPConfig = nn.MLPConfig

// NewMLP builds Linear→ReLU→…→Linear from cfg.
func NewMLP(cfg MLPConfig) (*Sequential, error) {
	return nn.NewMLP(cfg)
}

// Phase is the training-step state reported by Sequential.Phase.
type Phase = nn.Phase

// Training-step phases.
const (
	PhaseIdle            = nn.PhaseIdle
	PhaseForwarding      = nn.PhaseForwarding
	PhaseLossComputed    = nn.PhaseLossComputed
	PhaseBackpropagating = nn.PhaseBackpropagating
	PhaseUpdated         = nn.PhaseUpdated
)

// Loss

// SoftmaxCrossEntropy is the fused softmax and cross-entropy loss head.
type SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy

// Softmax writes the row-wise softmax of logits into probs.
func Softmax(logits, probs *tensor.Matrix) error {
	return nn.Softmax(logits, probs)
}

// CrossEntropy returns the mean negative log-likelihood of labels under probs
// and writes the gradient with respect to the logits into dLogits.
func CrossEntropy(probs *tensor.Matrix, labels []uint8, dLogits *tensor.Matrix) (float32, error) {
	return nn.CrossEntropy(probs, labels, dLogits)
}

// Checkpoints

// Checkpoint is a training state snapshot.
type Checkpoint = nn.Checkpoint

// LoadCheckpoint restores model parameters from a .born checkpoint.
func LoadCheckpoint(path string, model *Sequential) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, model)
}

// ReadCheckpoint reads a checkpoint without touching any model; call Restore to apply it.
func ReadCheckpoint(path string) (*Checkpoint, error) {
	return nn.ReadCheckpoint(path)
}

// MaxClasses is the largest class count a uint8 label can address.
const MaxClasses = nn.MaxClasses

// Errors
var (
	ErrPrecededForwardRequired = nn.ErrPrecededForwardRequired
	ErrLabelOutOfRange         = nn.ErrLabelOutOfRange
	ErrLabelCountMismatch      = nn.ErrLabelCountMismatch
	ErrEmptyBatch              = nn.ErrEmptyBatch
	ErrNotCheckpoint           = nn.ErrNotCheckpoint
)
