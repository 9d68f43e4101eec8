package train

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for configurations no training run can use.
var ErrInvalidConfig = errors.New("invalid training config")

// Config holds the hyperparameters of a training run.
type Config struct {
	Epochs         int     // Number of passes over the training set
	BatchSize      int     // Mini-batch size (default: 64)
	LearningRate   float32 // Initial learning rate (default: 0.05)
	Decay          float32 // Learning rate multiplier applied after each epoch (default: 0.95)
	Seed           int64   // Shuffle seed (default: 123)
	LogEvery       int     // Steps between progress logs (default: 500)
	CheckpointPath string  // Written after every epoch when non-empty
}

// withDefaults fills zero fields and validates the rest.
func (c Config) withDefaults() (Config, error) {
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.05
	}
	if c.Decay == 0 {
		c.Decay = 0.95
	}
	if c.Seed == 0 {
		c.Seed = 123
	}
	if c.LogEvery == 0 {
		c.LogEvery = 500
	}

	switch {
	case c.Epochs < 0:
		return c, fmt.Errorf("%w: epochs %d", ErrInvalidConfig, c.Epochs)
	case c.BatchSize < 0:
		return c, fmt.Errorf("%w: batch size %d", ErrInvalidConfig, c.BatchSize)
	case c.LearningRate < 0:
		return c, fmt.Errorf("%w: learning rate %g", ErrInvalidConfig, c.LearningRate)
	case c.Decay < 0:
		return c, fmt.Errorf("%w: decay %g", ErrInvalidConfig, c.Decay)
	case c.LogEvery < 0:
		return c, fmt.Errorf("%w: log interval %d", ErrInvalidConfig, c.LogEvery)
	}
	return c, nil
}
