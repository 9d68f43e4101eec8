package dataset

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/logos/internal/tensor"
)

func idxImages(t *testing.T, count, rows, cols uint32, pixels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{idxImagesMagic, count, rows, cols}))
	buf.Write(pixels)
	return buf.Bytes()
}

func idxLabels(t *testing.T, labels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{idxLabelsMagic, uint32(len(labels))}))
	buf.Write(labels)
	return buf.Bytes()
}

func TestDecodeIDXImages(t *testing.T) {
	data := idxImages(t, 2, 1, 2, []byte{0, 255, 51, 102})

	images, err := DecodeIDXImages(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, images.Shape())
	assert.InDeltaSlice(t, []float32{0, 1, 0.2, 0.4}, images.Data(), 1e-6)
}

func TestDecodeIDXImages_Errors(t *testing.T) {
	t.Run("bad magic", func(t *testing.T) {
		data := idxLabels(t, []byte{1, 2})
		_, err := DecodeIDXImages(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("truncated pixels", func(t *testing.T) {
		data := idxImages(t, 2, 2, 2, []byte{1, 2, 3, 4, 5})
		_, err := DecodeIDXImages(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := DecodeIDXImages(bytes.NewReader([]byte{0, 0, 8}))
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestDecodeIDXLabels(t *testing.T) {
	labels, err := DecodeIDXLabels(bytes.NewReader(idxLabels(t, []byte{7, 2, 1})))
	require.NoError(t, err)
	assert.Equal(t, []uint8{7, 2, 1}, labels)

	_, err = DecodeIDXLabels(bytes.NewReader(idxImages(t, 0, 1, 1, nil)))
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadIDX(t *testing.T) {
	dir := t.TempDir()
	imagesPath := filepath.Join(dir, "train-images-idx3-ubyte")
	labelsPath := filepath.Join(dir, "train-labels-idx1-ubyte")
	require.NoError(t, os.WriteFile(imagesPath, idxImages(t, 3, 2, 2, make([]byte, 12)), 0o600))
	require.NoError(t, os.WriteFile(labelsPath, idxLabels(t, []byte{0, 1, 2}), 0o600))

	ds, err := LoadIDX(imagesPath, labelsPath)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 4, ds.Features())
	assert.Equal(t, 3, ds.Classes())

	require.NoError(t, os.WriteFile(labelsPath, idxLabels(t, []byte{0, 1}), 0o600))
	_, err = LoadIDX(imagesPath, labelsPath)
	require.ErrorIs(t, err, ErrCountMismatch)
}

func TestLoadMat(t *testing.T) {
	dir := t.TempDir()
	imagesPath := filepath.Join(dir, "train_images.mat")
	labelsPath := filepath.Join(dir, "train_labels.mat")

	pixels := []float32{0, 0.25, 0.5, 1, 0.75, 0.125}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, pixels))
	require.NoError(t, os.WriteFile(imagesPath, buf.Bytes(), 0o600))
	require.NoError(t, os.WriteFile(labelsPath, []byte{4, 9}, 0o600))

	ds, err := LoadMat(imagesPath, labelsPath, 2, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, pixels, ds.Images.Data())
	assert.Equal(t, []uint8{4, 9}, ds.Labels)

	_, err = LoadImages(imagesPath, 3, 1, 3)
	require.ErrorIs(t, err, ErrTruncated)
	_, err = LoadLabels(labelsPath, 3)
	require.ErrorIs(t, err, ErrTruncated)
	_, err = LoadLabels(filepath.Join(dir, "missing.mat"), 1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBlobs(t *testing.T) {
	ds, err := Blobs(90, 4, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 90, ds.Len())
	assert.Equal(t, 4, ds.Features())
	assert.Equal(t, 3, ds.Classes())

	values := make([]float64, ds.Images.Len())
	for i, v := range ds.Images.Data() {
		values[i] = float64(v)
	}
	assert.GreaterOrEqual(t, floats.Min(values), 0.0)
	assert.LessOrEqual(t, floats.Max(values), 1.0)

	again, err := Blobs(90, 4, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, ds.Images.Data(), again.Images.Data())

	_, err = Blobs(0, 4, 3, 1)
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestBatcher_Batch(t *testing.T) {
	images, err := tensor.FromSlice(5, 2, []float32{0, 0, 1, 1, 2, 2, 3, 3, 4, 4})
	require.NoError(t, err)
	ds, err := New(images, []uint8{0, 1, 2, 3, 4})
	require.NoError(t, err)

	b := NewBatcher(ds, 7)
	assert.Equal(t, 3, b.NumBatches(2))

	var xb tensor.Matrix
	yb, err := b.Batch(0, 2, &xb, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1}, yb)
	assert.Equal(t, []float32{0, 0, 1, 1}, xb.Data())
	first := &xb.Data()[0]

	yb, err = b.Batch(2, 2, &xb, yb)
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 3}, yb)
	assert.Same(t, first, &xb.Data()[0], "same batch shape must reuse storage")

	yb, err = b.Batch(4, 2, &xb, yb)
	require.NoError(t, err)
	assert.Equal(t, []uint8{4}, yb, "last batch is clipped")
	assert.Equal(t, tensor.Shape{1, 2}, xb.Shape())

	_, err = b.Batch(5, 2, &xb, yb)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestBatcher_ShuffleIsSeeded(t *testing.T) {
	ds, err := Blobs(50, 2, 2, 3)
	require.NoError(t, err)

	a, b := NewBatcher(ds, 99), NewBatcher(ds, 99)
	a.Shuffle()
	b.Shuffle()
	assert.Equal(t, a.Order(), b.Order())
	assert.ElementsMatch(t, NewBatcher(ds, 0).Order(), a.Order(), "shuffle is a permutation")

	var xb tensor.Matrix
	yb, err := a.Batch(0, 10, &xb, nil)
	require.NoError(t, err)
	for i, idx := range a.Order()[:10] {
		assert.Equal(t, ds.Labels[idx], yb[i])
		assert.Equal(t, ds.Images.Row(idx), xb.Row(i))
	}
}
