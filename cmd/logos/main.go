// Command logos trains a multilayer perceptron classifier on MNIST-style data.
//
// Usage:
//
//	go run ./cmd/logos -data ./data -format mat -epochs 10 -hidden 256
//	go run ./cmd/logos -format idx -data ./mnist -checkpoint mlp.born
//	go run ./cmd/logos -format blobs -epochs 5 -log-format json
//
// The mat format reads raw little-endian float32 images and one byte per
// label from data/{train,test}_{images,labels}.mat. The idx format reads the
// original MNIST distribution files. The blobs format trains on a synthetic,
// linearly separable set and needs no files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/born-ml/logos/internal/dataset"
	"github.com/born-ml/logos/internal/nn"
	"github.com/born-ml/logos/internal/serialization"
	"github.com/born-ml/logos/internal/train"
)

const version = "v0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	opts, err := parseOptions(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.showVersion {
		fmt.Printf("logos %s\n", version)
		return 0
	}

	logger, err := newLogger(os.Stderr, opts.logFormat, opts.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Ctrl-C stops training at the next step boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("training failed", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, opts *options, logger *slog.Logger) error {
	trainSet, testSet, err := loadData(opts)
	if err != nil {
		return err
	}
	logger.Info("data loaded",
		"format", opts.format,
		"train_samples", trainSet.Len(),
		"test_samples", testSet.Len(),
		"features", trainSet.Features(),
	)

	classes := max(trainSet.Classes(), testSet.Classes(), opts.classes)
	model, err := nn.NewMLP(nn.MLPConfig{
		InputDim:   trainSet.Features(),
		HiddenDims: opts.hidden,
		Classes:    classes,
		Seed:       opts.seed,
	})
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}
	if opts.initFrom != "" {
		weights, _, err := serialization.LoadSafeTensors(opts.initFrom)
		if err != nil {
			return err
		}
		if err := model.LoadStateDict(weights); err != nil {
			return fmt.Errorf("failed to initialize from %s: %w", opts.initFrom, err)
		}
		logger.Info("weights initialized", "path", opts.initFrom)
	}
	logger.Info("model built", "input", trainSet.Features(), "hidden", opts.hidden, "classes", classes)

	trainer, err := train.New(model, train.Config{
		Epochs:         opts.epochs,
		BatchSize:      opts.batchSize,
		LearningRate:   float32(opts.lr),
		Decay:          float32(opts.decay),
		Seed:           opts.seed,
		LogEvery:       opts.logEvery,
		CheckpointPath: opts.checkpoint,
	}, logger)
	if err != nil {
		return err
	}

	if opts.resume != "" {
		if err := trainer.Resume(opts.resume); err != nil {
			return err
		}
	}

	history, err := trainer.Run(ctx, trainSet, testSet)
	if err != nil {
		return err
	}
	if n := len(history); n > 0 {
		last := history[n-1]
		logger.Info("training finished",
			"epochs", last.Epoch,
			"mean_loss", last.MeanLoss,
			"train_acc", last.TrainAccuracy,
			"test_acc", last.TestAccuracy,
		)
	}

	if opts.export != "" {
		meta := map[string]string{"format": "pt", "producer": "logos " + version}
		if err := serialization.SaveSafeTensors(opts.export, model.StateDict(), meta); err != nil {
			return err
		}
		logger.Info("weights exported", "path", opts.export)
	}
	return nil
}

func loadData(opts *options) (trainSet, testSet *dataset.Dataset, err error) {
	switch opts.format {
	case formatMat:
		trainSet, err = dataset.LoadMat(
			opts.path("train_images.mat"), opts.path("train_labels.mat"),
			opts.trainSamples, opts.rows, opts.cols)
		if err != nil {
			return nil, nil, err
		}
		testSet, err = dataset.LoadMat(
			opts.path("test_images.mat"), opts.path("test_labels.mat"),
			opts.testSamples, opts.rows, opts.cols)
	case formatIDX:
		trainSet, err = dataset.LoadIDX(
			opts.path("train-images-idx3-ubyte"), opts.path("train-labels-idx1-ubyte"))
		if err != nil {
			return nil, nil, err
		}
		testSet, err = dataset.LoadIDX(
			opts.path("t10k-images-idx3-ubyte"), opts.path("t10k-labels-idx1-ubyte"))
	case formatBlobs:
		features := opts.rows * opts.cols
		trainSet, err = dataset.Blobs(opts.trainSamples, features, opts.classes, opts.seed)
		if err != nil {
			return nil, nil, err
		}
		testSet, err = dataset.Blobs(opts.testSamples, features, opts.classes, opts.seed+1)
	}
	if err != nil {
		return nil, nil, err
	}
	return trainSet, testSet, nil
}
