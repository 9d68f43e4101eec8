package nn

import (
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/logos/internal/serialization"
	"github.com/born-ml/logos/internal/tensor"
)

// ErrNotCheckpoint is returned when a .born file carries parameters but no training state.
var ErrNotCheckpoint = errors.New("file is not a checkpoint")

// Checkpoint is a training state snapshot: model parameters plus enough of
// the schedule to resume training where it stopped.
//
// Plain SGD keeps no per-parameter state, so the learning rate and its decay
// are all the optimizer contributes.
//
// Example:
//
//	ckpt := &nn.Checkpoint{
//	    Model:        model,
//	    Epoch:        10,
//	    Step:         9370,
//	    Loss:         0.123,
//	    LearningRate: 0.0299,
//	    Decay:        0.95,
//	}
//	err := ckpt.Save("checkpoint_epoch_10.born")
//
// To resume training:
//
//	ckpt, err := nn.LoadCheckpoint("checkpoint.born", model)
//	startEpoch := ckpt.Epoch
type Checkpoint struct {
	Model        *Sequential    // The model whose parameters are saved
	Epoch        int            // Completed epochs
	Step         int64          // Completed training steps
	Loss         float64        // Mean loss of the last completed epoch
	LearningRate float64        // Learning rate for the next epoch
	Decay        float64        // Per-epoch learning rate multiplier
	Metadata     map[string]any // Additional training metadata
	CreatedAt    time.Time      // When the checkpoint was written (set on load)

	state map[string]*tensor.Matrix // parameters read by ReadCheckpoint
}

// Save writes the checkpoint to a .born file.
func (c *Checkpoint) Save(path string) error {
	header := serialization.Header{
		ModelType: "Sequential",
		CheckpointMeta: &serialization.CheckpointMeta{
			Epoch:        c.Epoch,
			Step:         c.Step,
			Loss:         c.Loss,
			LearningRate: c.LearningRate,
			Decay:        c.Decay,
			TrainingMeta: c.Metadata,
		},
	}

	if err := serialization.Save(path, c.Model.StateDict(), header); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint restores model's parameters from path and returns the
// training state stored alongside them. The model must have the architecture
// the checkpoint was saved from; on any error it is left unchanged.
func LoadCheckpoint(path string, model *Sequential) (*Checkpoint, error) {
	ckpt, err := ReadCheckpoint(path)
	if err != nil {
		return nil, err
	}
	if err := ckpt.Restore(model); err != nil {
		return nil, err
	}
	return ckpt, nil
}

// ReadCheckpoint reads the training state at path without touching any model,
// so callers can inspect it before committing. Restore applies the parameters.
func ReadCheckpoint(path string) (*Checkpoint, error) {
	stateDict, header, err := serialization.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	meta := header.CheckpointMeta
	if meta == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotCheckpoint)
	}

	return &Checkpoint{
		Epoch:        meta.Epoch,
		Step:         meta.Step,
		Loss:         meta.Loss,
		LearningRate: meta.LearningRate,
		Decay:        meta.Decay,
		Metadata:     meta.TrainingMeta,
		CreatedAt:    header.CreatedAt,
		state:        stateDict,
	}, nil
}

// Restore copies the parameters read by ReadCheckpoint into model and sets
// c.Model. On error model is left unchanged.
func (c *Checkpoint) Restore(model *Sequential) error {
	if c.state == nil {
		return fmt.Errorf("restore: %w", ErrNotCheckpoint)
	}
	if err := model.LoadStateDict(c.state); err != nil {
		return fmt.Errorf("failed to load model state: %w", err)
	}
	c.Model = model
	return nil
}
