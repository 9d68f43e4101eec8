// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers, loss and model used to train feed-forward
// classifiers.
//
// # Overview
//
// A model is a Sequential list of layers. Each Layer implements Forward and
// Backward over float32 matrices and accumulates its own parameter
// gradients, which GradientDescentStep applies. The loss head fuses softmax
// with cross-entropy.
//
// # Basic Usage
//
//	model, err := nn.NewMLP(nn.MLPConfig{
//	    InputDim:   784,
//	    HiddenDims: []int{256},
//	    Classes:    10,
//	    Seed:       123,
//	})
//
//	for batch := range batches {
//	    loss, err := model.TrainStep(batch.X, batch.Y, 0.05)
//	}
//
//	acc, err := model.Accuracy(testX, testY)
//
// # Custom Architectures
//
// Layers can be assembled directly:
//
//	rng := rand.New(rand.NewSource(1))
//	l1, _ := nn.NewLinear(784, 128, rng, 64)
//	l2, _ := nn.NewLinear(128, 10, rng, 64)
//	model := nn.NewSequential(64, l1, nn.NewReLU(), l2)
//
// # Checkpoints
//
// Checkpoint.Save writes the model parameters and training progress to a
// .born file; LoadCheckpoint restores them into a model of the same shape.
package nn
