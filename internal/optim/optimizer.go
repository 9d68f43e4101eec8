// Package optim implements the learning-rate side of plain stochastic
// gradient descent.
//
// This package provides:
//   - SGD: holds the current learning rate and drives a model's training step
//   - ExponentialLR: multiplies the learning rate by a decay factor every epoch
//
// Example usage:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//	sched := optim.NewExponentialLR(sgd, optim.ScheduleConfig{Decay: 0.95})
//
//	for epoch := range epochs {
//	    for batch := range batches {
//	        loss, err := sgd.Step(model, batch.X, batch.Y)
//	    }
//	    sched.Step()
//	}
package optim

import (
	"github.com/born-ml/logos/internal/tensor"
)

// Trainable is a model that applies one gradient descent step per call.
type Trainable interface {
	TrainStep(input *tensor.Matrix, labels []uint8, rate float32) (float32, error)
}

// Optimizer exposes the learning rate to schedulers.
type Optimizer interface {
	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR replaces the current learning rate.
	SetLR(lr float32)
}
