package optim

import "github.com/born-ml/logos/internal/tensor"

// SGD implements plain Stochastic Gradient Descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// There is no momentum or other per-parameter state: the whole optimizer is
// its learning rate.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//	loss, err := sgd.Step(model, xb, yb)
type SGD struct {
	lr float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR float32 // Learning rate (default: 0.05)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.05
	}
	return &SGD{lr: config.LR}
}

// Step runs one training step of model at the current learning rate and
// returns the batch loss.
func (s *SGD) Step(model Trainable, input *tensor.Matrix, labels []uint8) (float32, error) {
	return model.TrainStep(input, labels, s.lr)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR sets the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
