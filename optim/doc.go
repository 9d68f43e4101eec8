// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the learning rate side of stochastic gradient descent.
//
// SGD holds the current learning rate and applies it to a model's training
// step. ExponentialLR multiplies that rate by a fixed decay after each epoch.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{LR: 0.05})
//	sched := optim.NewExponentialLR(sgd, optim.ScheduleConfig{Decay: 0.95})
//
//	for epoch := 0; epoch < 10; epoch++ {
//	    for _, b := range batches {
//	        loss, err := sgd.Step(model, b.X, b.Y)
//	    }
//	    sched.Step()
//	}
package optim
