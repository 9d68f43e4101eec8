package nn

import (
	"fmt"
	"slices"
	"strings"

	"github.com/born-ml/logos/internal/memory"
	"github.com/born-ml/logos/internal/tensor"
)

// Sequential chains layers and drives mini-batch gradient descent over them.
//
// Each layer's output becomes the next layer's input. Sequential owns one
// activation matrix per layer: Linear layers keep a reference to their input
// until Backward, so an activation must not be overwritten within a step.
// Gradients get one matrix per layer boundary as well: grads[i] is the
// gradient with respect to the input of layers[i] and grads[len(layers)] is
// the logits gradient. Each keeps a fixed shape for a given batch shape, so
// all of them are reused across steps and reallocated only when it changes.
//
// Example:
//
//	model := nn.NewSequential(memory.DefaultAlignment,
//	    l1, nn.NewReLU(), l2,
//	)
//	loss, err := model.TrainStep(x, labels, 0.05)
//
// A Sequential is not safe for concurrent use.
type Sequential struct {
	layers    []Layer
	alignment int

	acts  []*tensor.Matrix    // acts[i] is the output of layers[i]
	grads []*tensor.Matrix    // grads[i] is the gradient at the input of layers[i]
	arena *memory.Arena       // per-step scratch, reset at each step boundary
	probs tensor.Matrix       // softmax output, rebound to arena every step
	loss  SoftmaxCrossEntropy // fused loss head

	phase     Phase
	phaseHook func(Phase)
}

// NewSequential creates a Sequential over layers. A non-positive alignment
// selects memory.DefaultAlignment for the scratch matrices.
func NewSequential(alignment int, layers ...Layer) *Sequential {
	if alignment <= 0 {
		alignment = memory.DefaultAlignment
	}

	acts := make([]*tensor.Matrix, len(layers))
	for i := range acts {
		acts[i] = new(tensor.Matrix)
	}
	grads := make([]*tensor.Matrix, len(layers)+1)
	for i := range grads {
		grads[i] = new(tensor.Matrix)
	}

	return &Sequential{
		layers:    layers,
		alignment: alignment,
		acts:      acts,
		grads:     grads,
	}
}

// Len returns the number of layers.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Layer(index int) Layer {
	if index < 0 || index >= len(s.layers) {
		panic("Sequential.Layer: index out of bounds")
	}
	return s.layers[index]
}

// Phase returns the current training step phase.
func (s *Sequential) Phase() Phase {
	return s.phase
}

// OnPhase registers fn to be called on every phase transition. Pass nil to remove it.
func (s *Sequential) OnPhase(fn func(Phase)) {
	s.phaseHook = fn
}

func (s *Sequential) setPhase(p Phase) {
	s.phase = p
	if s.phaseHook != nil {
		s.phaseHook(p)
	}
}

// Forward runs input through every layer and returns the logits.
//
// The returned matrix belongs to the model and is overwritten by the next
// Forward or TrainStep call. Parameters and gradients are not modified.
func (s *Sequential) Forward(input *tensor.Matrix) (*tensor.Matrix, error) {
	if len(s.layers) == 0 {
		return nil, fmt.Errorf("%w: model has no layers", tensor.ErrEmptyInput)
	}
	if input.Empty() {
		return nil, fmt.Errorf("%w: input %v", ErrEmptyBatch, input.Shape())
	}

	cur := input
	for i, layer := range s.layers {
		if err := layer.Forward(cur, s.acts[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		cur = s.acts[i]
	}
	return cur, nil
}

// Logits returns the output of the most recent Forward or TrainStep call, or
// nil for a model without layers. It aliases model storage like Forward's result.
func (s *Sequential) Logits() *tensor.Matrix {
	if len(s.acts) == 0 {
		return nil
	}
	return s.acts[len(s.acts)-1]
}

// TrainStep runs one step of mini-batch gradient descent and returns the
// batch mean loss:
//
//  1. Forward through every layer, producing logits
//  2. Fused softmax + cross-entropy, producing the loss and logits gradient
//  3. Backward through every layer in reverse order
//  4. GradientDescentStep on every layer
//  5. ZeroGrads on every layer
//
// Returns ErrEmptyBatch for an empty input and ErrLabelCountMismatch when
// len(labels) != input.Rows(). Parameters are only modified once every
// earlier stage has succeeded.
func (s *Sequential) TrainStep(input *tensor.Matrix, labels []uint8, rate float32) (float32, error) {
	if input.Empty() {
		return 0, fmt.Errorf("%w: input %v", ErrEmptyBatch, input.Shape())
	}
	if len(labels) != input.Rows() {
		return 0, fmt.Errorf("%w: %d labels for %d rows", ErrLabelCountMismatch, len(labels), input.Rows())
	}

	loss, err := s.trainStep(input, labels, rate)
	if err != nil {
		s.setPhase(PhaseIdle)
		return 0, err
	}
	return loss, nil
}

func (s *Sequential) trainStep(input *tensor.Matrix, labels []uint8, rate float32) (float32, error) {
	s.setPhase(PhaseForwarding)
	logits, err := s.Forward(input)
	if err != nil {
		return 0, err
	}

	probs, err := s.scratchProbs(logits.Rows(), logits.Cols())
	if err != nil {
		return 0, err
	}
	dLogits := s.grads[len(s.layers)]
	loss, err := s.loss.Compute(logits, labels, probs, dLogits)
	if err != nil {
		return 0, err
	}
	s.setPhase(PhaseLossComputed)

	s.setPhase(PhaseBackpropagating)
	for i := len(s.layers) - 1; i >= 0; i-- {
		if err := s.layers[i].Backward(s.grads[i+1], s.grads[i]); err != nil {
			s.ZeroGrads()
			return 0, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	for _, layer := range s.layers {
		layer.GradientDescentStep(rate)
	}
	s.setPhase(PhaseUpdated)

	s.ZeroGrads()
	s.setPhase(PhaseIdle)
	return loss, nil
}

// scratchProbs resets the step arena and rebinds the probability matrix to a
// rows×cols region of it, growing the arena when the batch shape outgrows it.
func (s *Sequential) scratchProbs(rows, cols int) (*tensor.Matrix, error) {
	need := memory.AlignUp(rows*cols*4, s.alignment)
	if s.arena == nil || s.arena.Capacity() < need {
		arena, err := memory.NewArena(need, s.alignment)
		if err != nil {
			return nil, fmt.Errorf("step arena: %w", err)
		}
		s.arena = arena
	}

	s.arena.Reset()
	if err := s.probs.Rebind(s.arena, rows, cols); err != nil {
		return nil, err
	}
	return &s.probs, nil
}

// ZeroGrads clears the gradients of every layer.
func (s *Sequential) ZeroGrads() {
	for _, layer := range s.layers {
		layer.ZeroGrads()
	}
}

// Accuracy returns the fraction of rows whose argmax prediction equals the label.
func (s *Sequential) Accuracy(input *tensor.Matrix, labels []uint8) (float32, error) {
	if len(labels) != input.Rows() {
		return 0, fmt.Errorf("%w: %d labels for %d rows", ErrLabelCountMismatch, len(labels), input.Rows())
	}

	predictions, err := s.Predict(input)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i, p := range predictions {
		if p == int(labels[i]) {
			correct++
		}
	}
	return float32(correct) / float32(len(predictions)), nil
}

// Predict returns the argmax class of every input row.
func (s *Sequential) Predict(input *tensor.Matrix) ([]int, error) {
	logits, err := s.Forward(input)
	if err != nil {
		return nil, err
	}

	predictions := make([]int, logits.Rows())
	for i := range predictions {
		if predictions[i], err = ArgmaxRow(logits, i); err != nil {
			return nil, err
		}
	}
	return predictions, nil
}

// Parameters returns all trainable parameters in layer order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		if p, ok := layer.(Parameterized); ok {
			params = append(params, p.Parameters()...)
		}
	}
	return params
}

// StateDict returns the parameter matrices keyed by layer index and name
// (e.g. "0.weight", "0.bias", "2.weight"). The matrices alias model storage.
func (s *Sequential) StateDict() map[string]*tensor.Matrix {
	stateDict := make(map[string]*tensor.Matrix)
	for i, layer := range s.layers {
		p, ok := layer.(Parameterized)
		if !ok {
			continue
		}
		for _, param := range p.Parameters() {
			stateDict[fmt.Sprintf("%d.%s", i, param.Name())] = param.Value()
		}
	}
	return stateDict
}

// LoadStateDict copies parameters from stateDict into the model.
//
// Every expected key must be present with a matching shape, and unknown keys
// are rejected. Nothing is copied unless the whole dictionary validates.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.Matrix) error {
	type pending struct {
		param *Parameter
		src   *tensor.Matrix
	}

	var loads []pending
	for i, layer := range s.layers {
		p, ok := layer.(Parameterized)
		if !ok {
			continue
		}
		for _, param := range p.Parameters() {
			key := fmt.Sprintf("%d.%s", i, param.Name())
			src, ok := stateDict[key]
			if !ok {
				return fmt.Errorf("missing %s in state dict", key)
			}
			if !param.Value().SameShape(src) {
				return fmt.Errorf("%w: %s expected %v, got %v",
					tensor.ErrShapeMismatch, key, param.Value().Shape(), src.Shape())
			}
			loads = append(loads, pending{param, src})
		}
	}

	if len(loads) != len(stateDict) {
		var unknown []string
		expected := s.StateDict()
		for key := range stateDict {
			if _, ok := expected[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		slices.Sort(unknown)
		return fmt.Errorf("unexpected keys in state dict: %s", strings.Join(unknown, ", "))
	}

	for _, l := range loads {
		if err := l.param.Load(l.src); err != nil {
			return err
		}
	}
	return nil
}
