package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	formatMat   = "mat"
	formatIDX   = "idx"
	formatBlobs = "blobs"
)

type options struct {
	dataDir      string
	format       string
	trainSamples int
	testSamples  int
	rows, cols   int
	classes      int
	hidden       []int

	epochs    int
	batchSize int
	lr        float64
	decay     float64
	seed      int64
	logEvery  int

	checkpoint string
	resume     string
	initFrom   string
	export     string

	logLevel    string
	logFormat   string
	showVersion bool
}

func (o *options) path(name string) string {
	return filepath.Join(o.dataDir, name)
}

func parseOptions(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("logos", flag.ContinueOnError)

	fs.StringVar(&o.dataDir, "data", "./data", "Directory containing the dataset files")
	fs.StringVar(&o.format, "format", formatMat, "Dataset format: mat, idx or blobs")
	fs.IntVar(&o.trainSamples, "train-samples", 60000, "Training samples to read (mat, blobs)")
	fs.IntVar(&o.testSamples, "test-samples", 10000, "Test samples to read (mat, blobs)")
	fs.IntVar(&o.rows, "rows", 28, "Image rows (mat, blobs)")
	fs.IntVar(&o.cols, "cols", 28, "Image columns (mat, blobs)")
	fs.IntVar(&o.classes, "classes", 10, "Minimum number of output classes")
	hidden := fs.String("hidden", "256", "Comma-separated hidden layer widths")

	fs.IntVar(&o.epochs, "epochs", 10, "Number of training epochs")
	fs.IntVar(&o.batchSize, "batch", 64, "Mini-batch size")
	fs.Float64Var(&o.lr, "lr", 0.05, "Initial learning rate")
	fs.Float64Var(&o.decay, "decay", 0.95, "Learning rate multiplier applied after each epoch")
	fs.Int64Var(&o.seed, "seed", 123, "Seed for weight initialization and shuffling")
	fs.IntVar(&o.logEvery, "log-every", 500, "Steps between progress logs")

	fs.StringVar(&o.checkpoint, "checkpoint", "", "Write a .born checkpoint here after every epoch")
	fs.StringVar(&o.resume, "resume", "", "Resume training from this .born checkpoint")
	fs.StringVar(&o.initFrom, "init", "", "Initialize weights from this SafeTensors file")
	fs.StringVar(&o.export, "export", "", "Export final weights to this SafeTensors file")

	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&o.showVersion, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch o.format {
	case formatMat, formatIDX, formatBlobs:
	default:
		return nil, fmt.Errorf("unknown format %q", o.format)
	}

	var err error
	if o.hidden, err = parseWidths(*hidden); err != nil {
		return nil, err
	}
	if o.trainSamples <= 0 || o.testSamples <= 0 || o.rows <= 0 || o.cols <= 0 {
		return nil, errors.New("sample counts and image dimensions must be positive")
	}
	if o.classes <= 0 || o.classes > 256 {
		return nil, fmt.Errorf("classes must be in [1, 256], got %d", o.classes)
	}
	return o, nil
}

// parseWidths parses "256,128" into layer widths.
func parseWidths(s string) ([]int, error) {
	var widths []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("invalid hidden width %q", part)
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, errors.New("at least one hidden layer is required")
	}
	return widths, nil
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
