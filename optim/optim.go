// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/logos/internal/optim"
)

// Optimizer exposes the learning rate to schedulers.
type Optimizer = optim.Optimizer

// Trainable is a model that applies one gradient descent step per call.
type Trainable = optim.Trainable

// SGD (Stochastic Gradient Descent)

// SGD is plain stochastic gradient descent without momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//	loss, err := sgd.Step(model, x, labels)
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Learning rate schedules

// Scheduler adjusts an optimizer's learning rate at epoch boundaries.
type Scheduler = optim.Scheduler

// ScheduleConfig configures an ExponentialLR.
type ScheduleConfig = optim.ScheduleConfig

// ExponentialLR multiplies the learning rate by a decay factor every epoch.
type ExponentialLR = optim.ExponentialLR

// NewExponentialLR creates an exponential schedule driving optimizer.
func NewExponentialLR(optimizer Optimizer, config ScheduleConfig) *ExponentialLR {
	return optim.NewExponentialLR(optimizer, config)
}
