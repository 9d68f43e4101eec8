package optim

import "github.com/chewxy/math32"

// Scheduler adjusts an optimizer's learning rate at epoch boundaries.
type Scheduler interface {
	// Step advances the schedule by one epoch.
	Step()

	// GetLR returns the learning rate the optimizer currently uses.
	GetLR() float32
}

// ScheduleConfig configures an ExponentialLR.
type ScheduleConfig struct {
	LR    float32 // Initial learning rate (default: the optimizer's current rate)
	Decay float32 // Per-epoch multiplier (default: 0.95)
}

// ExponentialLR multiplies the learning rate by Decay after every epoch:
//
//	lr(epoch) = LR * Decay^epoch
type ExponentialLR struct {
	optimizer Optimizer
	initialLR float32
	decay     float32
	epoch     int
}

// NewExponentialLR creates a schedule driving optimizer. A non-zero
// config.LR resets the optimizer to that rate.
func NewExponentialLR(optimizer Optimizer, config ScheduleConfig) *ExponentialLR {
	if config.LR == 0 {
		config.LR = optimizer.GetLR()
	}
	if config.Decay == 0 {
		config.Decay = 0.95
	}
	optimizer.SetLR(config.LR)

	return &ExponentialLR{
		optimizer: optimizer,
		initialLR: config.LR,
		decay:     config.Decay,
	}
}

// Step moves to the next epoch and updates the optimizer.
func (s *ExponentialLR) Step() {
	s.epoch++
	s.optimizer.SetLR(s.LRAt(s.epoch))
}

// GetLR returns the optimizer's current learning rate.
func (s *ExponentialLR) GetLR() float32 {
	return s.optimizer.GetLR()
}

// Epoch returns the number of completed Step calls.
func (s *ExponentialLR) Epoch() int {
	return s.epoch
}

// LRAt returns the learning rate scheduled for epoch (0-based).
func (s *ExponentialLR) LRAt(epoch int) float32 {
	return s.initialLR * math32.Pow(s.decay, float32(epoch))
}
