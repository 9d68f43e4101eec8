// Package train drives epochs of mini-batch gradient descent over a model.
//
// A Trainer shuffles the training set each epoch, feeds it to the model in
// batches, records the mean batch loss, evaluates accuracy and then decays
// the learning rate. Progress is reported through log/slog.
//
// Example:
//
//	trainer, err := train.New(model, train.Config{Epochs: 10}, slog.Default())
//	history, err := trainer.Run(ctx, trainSet, testSet)
package train

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/born-ml/logos/internal/dataset"
	"github.com/born-ml/logos/internal/nn"
	"github.com/born-ml/logos/internal/optim"
	"github.com/born-ml/logos/internal/tensor"
)

// EpochStats summarizes one completed epoch.
type EpochStats struct {
	Epoch         int           // 1-based epoch number
	LearningRate  float32       // Rate used during the epoch
	MeanLoss      float32       // Mean of the batch losses
	TrainAccuracy float32       // Accuracy on the training set after the epoch
	TestAccuracy  float32       // Accuracy on the test set; zero without one
	Duration      time.Duration // Wall time of the epoch including evaluation
}

// Trainer runs training epochs for a single model. It is not safe for concurrent use.
type Trainer struct {
	model  *nn.Sequential
	cfg    Config
	logger *slog.Logger

	sgd   *optim.SGD
	sched *optim.ExponentialLR

	epoch int   // completed epochs
	step  int64 // completed training steps

	xb tensor.Matrix // batch features, reused across steps
	yb []uint8
}

// New creates a Trainer for model. A nil logger selects slog.Default().
func New(model *nn.Sequential, cfg Config, logger *slog.Logger) (*Trainer, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	sgd := optim.NewSGD(optim.SGDConfig{LR: cfg.LearningRate})
	return &Trainer{
		model:  model,
		cfg:    cfg,
		logger: logger,
		sgd:    sgd,
		sched:  optim.NewExponentialLR(sgd, optim.ScheduleConfig{LR: cfg.LearningRate, Decay: cfg.Decay}),
	}, nil
}

// Config returns the effective configuration, defaults included.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Epoch returns the number of completed epochs.
func (t *Trainer) Epoch() int {
	return t.epoch
}

// Step returns the number of completed training steps.
func (t *Trainer) Step() int64 {
	return t.step
}

// LearningRate returns the rate the next step will use.
func (t *Trainer) LearningRate() float32 {
	return t.sched.GetLR()
}

// Resume restores model parameters and training progress from a checkpoint.
// Training continues at the epoch after the last one saved.
//
// The checkpoint's decay and learning rate must agree with the schedule this
// Trainer was configured with; otherwise Resume fails with ErrInvalidConfig
// and the model is left unchanged.
func (t *Trainer) Resume(path string) error {
	ckpt, err := nn.ReadCheckpoint(path)
	if err != nil {
		return err
	}
	if ckpt.Decay != 0 && !closeTo(ckpt.Decay, float64(t.cfg.Decay)) {
		return fmt.Errorf("%w: checkpoint decay %g, configured %g", ErrInvalidConfig, ckpt.Decay, t.cfg.Decay)
	}
	if want := t.sched.LRAt(ckpt.Epoch); ckpt.LearningRate != 0 && !closeTo(ckpt.LearningRate, float64(want)) {
		return fmt.Errorf("%w: checkpoint learning rate %g, schedule gives %g at epoch %d",
			ErrInvalidConfig, ckpt.LearningRate, want, ckpt.Epoch)
	}
	if err := ckpt.Restore(t.model); err != nil {
		return err
	}

	t.epoch = ckpt.Epoch
	t.step = ckpt.Step
	// Replay the schedule so LRAt stays anchored at the initial rate.
	for t.sched.Epoch() < t.epoch {
		t.sched.Step()
	}

	t.logger.Info("resumed from checkpoint",
		"path", path,
		"epoch", t.epoch,
		"step", t.step,
		"lr", t.sched.GetLR(),
	)
	return nil
}

// Run trains until Config.Epochs epochs have completed and returns the stats
// of the epochs run by this call. testSet may be nil.
//
// Cancelling ctx stops training at the next step boundary; the stats of the
// epochs completed so far are returned with ctx's error.
func (t *Trainer) Run(ctx context.Context, trainSet, testSet *dataset.Dataset) ([]EpochStats, error) {
	if trainSet.Len() == 0 {
		return nil, fmt.Errorf("train: %w", dataset.ErrEmptyBatch)
	}

	batcher := dataset.NewBatcher(trainSet, t.cfg.Seed)
	// Advance the shuffle stream past the epochs already trained.
	for i := 0; i < t.epoch; i++ {
		batcher.Shuffle()
	}

	t.logger.Info("training started",
		"samples", trainSet.Len(),
		"features", trainSet.Features(),
		"batch_size", t.cfg.BatchSize,
		"batches_per_epoch", batcher.NumBatches(t.cfg.BatchSize),
		"epochs", t.cfg.Epochs,
		"start_epoch", t.epoch+1,
	)

	var history []EpochStats
	for t.epoch < t.cfg.Epochs {
		stats, err := t.runEpoch(ctx, batcher, trainSet, testSet)
		if err != nil {
			return history, err
		}
		history = append(history, stats)

		t.logger.Info("epoch complete",
			"epoch", stats.Epoch,
			"lr", stats.LearningRate,
			"mean_loss", stats.MeanLoss,
			"train_acc", stats.TrainAccuracy,
			"test_acc", stats.TestAccuracy,
			"duration", stats.Duration,
		)

		if t.cfg.CheckpointPath != "" {
			if err := t.saveCheckpoint(stats); err != nil {
				return history, err
			}
		}
	}
	return history, nil
}

func (t *Trainer) runEpoch(ctx context.Context, batcher *dataset.Batcher, trainSet, testSet *dataset.Dataset) (EpochStats, error) {
	start := time.Now()
	stats := EpochStats{Epoch: t.epoch + 1, LearningRate: t.sgd.GetLR()}

	batcher.Shuffle()

	var total float32
	batches := 0
	for offset := 0; offset < batcher.Len(); offset += t.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var err error
		t.yb, err = batcher.Batch(offset, t.cfg.BatchSize, &t.xb, t.yb)
		if err != nil {
			return stats, err
		}

		loss, err := t.sgd.Step(t.model, &t.xb, t.yb)
		if err != nil {
			return stats, fmt.Errorf("epoch %d step %d: %w", stats.Epoch, t.step+1, err)
		}
		total += loss
		batches++
		t.step++

		if t.cfg.LogEvery > 0 && t.step%int64(t.cfg.LogEvery) == 0 {
			t.logProgress(loss)
		}
	}
	stats.MeanLoss = total / float32(batches)

	t.epoch++
	t.sched.Step()

	var err error
	if stats.TrainAccuracy, err = t.Evaluate(trainSet); err != nil {
		return stats, err
	}
	if testSet != nil {
		if stats.TestAccuracy, err = t.Evaluate(testSet); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// logProgress reports the latest loss along with the step's prediction for
// the first sample of the current batch, read from the logits it produced.
func (t *Trainer) logProgress(loss float32) {
	attrs := []any{"epoch", t.epoch + 1, "step", t.step, "loss", loss}

	if logits := t.model.Logits(); logits != nil {
		if pred, err := nn.ArgmaxRow(logits, 0); err == nil {
			attrs = append(attrs, "predicted", pred, "label", t.yb[0])
		}
	}

	t.logger.Info("training progress", attrs...)
}

// Evaluate returns the model's accuracy on data, computed in batches of
// Config.BatchSize in stored order.
func (t *Trainer) Evaluate(data *dataset.Dataset) (float32, error) {
	if data.Len() == 0 {
		return 0, fmt.Errorf("evaluate: %w", dataset.ErrEmptyBatch)
	}

	batcher := dataset.NewBatcher(data, 0)
	var (
		xb   tensor.Matrix
		yb   []uint8
		hits int
	)
	for offset := 0; offset < batcher.Len(); offset += t.cfg.BatchSize {
		var err error
		yb, err = batcher.Batch(offset, t.cfg.BatchSize, &xb, yb)
		if err != nil {
			return 0, err
		}
		preds, err := t.model.Predict(&xb)
		if err != nil {
			return 0, err
		}
		for i, p := range preds {
			if p == int(yb[i]) {
				hits++
			}
		}
	}
	return float32(hits) / float32(data.Len()), nil
}

func (t *Trainer) saveCheckpoint(stats EpochStats) error {
	ckpt := &nn.Checkpoint{
		Model:        t.model,
		Epoch:        t.epoch,
		Step:         t.step,
		Loss:         float64(stats.MeanLoss),
		LearningRate: float64(t.sched.GetLR()),
		Decay:        float64(t.cfg.Decay),
		Metadata: map[string]any{
			"batch_size": t.cfg.BatchSize,
			"initial_lr": t.cfg.LearningRate,
			"seed":       t.cfg.Seed,
			"train_acc":  stats.TrainAccuracy,
			"test_acc":   stats.TestAccuracy,
		},
	}
	if err := ckpt.Save(t.cfg.CheckpointPath); err != nil {
		return err
	}
	t.logger.Info("checkpoint saved", "path", t.cfg.CheckpointPath, "epoch", t.epoch)
	return nil
}

// closeTo compares float32-derived rates with a relative tolerance.
func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(math.Abs(a), math.Abs(b))
}
