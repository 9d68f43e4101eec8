package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/logos/internal/serialization"
)

func TestParseOptions_Defaults(t *testing.T) {
	o, err := parseOptions(nil)
	require.NoError(t, err)

	assert.Equal(t, formatMat, o.format)
	assert.Equal(t, []int{256}, o.hidden)
	assert.Equal(t, 10, o.epochs)
	assert.Equal(t, 64, o.batchSize)
	assert.InDelta(t, 0.05, o.lr, 1e-12)
	assert.InDelta(t, 0.95, o.decay, 1e-12)
	assert.Equal(t, 60000, o.trainSamples)
	assert.Equal(t, filepath.Join("data", "train_images.mat"), filepath.Clean(o.path("train_images.mat")))
}

func TestParseOptions_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"-format", "csv"},
		{"-hidden", "128,x"},
		{"-hidden", ""},
		{"-hidden", "0"},
		{"-rows", "0"},
		{"-classes", "300"},
		{"-no-such-flag"},
	} {
		_, err := parseOptions(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseWidths(t *testing.T) {
	widths, err := parseWidths(" 128, 64 ,")
	require.NoError(t, err)
	assert.Equal(t, []int{128, 64}, widths)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, "xml", "info")
	require.Error(t, err)
	_, err = newLogger(&buf, "text", "loud")
	require.Error(t, err)
}

func TestRun_Blobs(t *testing.T) {
	dir := t.TempDir()
	ckpt := filepath.Join(dir, "mlp.born")
	export := filepath.Join(dir, "mlp.safetensors")

	o, err := parseOptions([]string{
		"-format", "blobs",
		"-rows", "2", "-cols", "3",
		"-classes", "3",
		"-train-samples", "90", "-test-samples", "30",
		"-hidden", "8",
		"-epochs", "2", "-batch", "16", "-lr", "0.1",
		"-checkpoint", ckpt,
		"-export", export,
	})
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	require.NoError(t, run(context.Background(), o, logger))
	assert.Contains(t, logs.String(), "training finished")

	_, header, err := serialization.Load(ckpt)
	require.NoError(t, err)
	require.NotNil(t, header.CheckpointMeta)
	assert.Equal(t, 2, header.CheckpointMeta.Epoch)

	info, err := os.Stat(export)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Exported weights initialize a fresh model of the same shape.
	o.initFrom = export
	o.export = ""
	o.checkpoint = ""
	require.NoError(t, run(context.Background(), o, logger))
	assert.Contains(t, logs.String(), "weights initialized")

	// Resuming a finished run trains nothing further.
	o.initFrom = ""
	o.resume = ckpt
	require.NoError(t, run(context.Background(), o, logger))
}

func TestRun_MissingFiles(t *testing.T) {
	o, err := parseOptions([]string{"-data", t.TempDir(), "-format", "idx"})
	require.NoError(t, err)
	require.Error(t, run(context.Background(), o, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}
