// Package dataset loads and batches labelled samples for the training engine.
//
// Samples are rows of a float32 matrix with values normalized to [0, 1];
// labels are small unsigned integers. Three sources are supported:
//   - raw little-endian float32 images and raw byte labels (".mat" files)
//   - IDX files as distributed with MNIST
//   - Blobs, a synthetic linearly separable set for tests and smoke runs
package dataset

import (
	"errors"
	"fmt"

	"github.com/born-ml/logos/internal/tensor"
)

var (
	// ErrInvalidMagic is returned when an IDX header carries an unexpected magic number.
	ErrInvalidMagic = errors.New("dataset: invalid magic number")

	// ErrTruncated is returned when a file holds fewer bytes than its header or caller promised.
	ErrTruncated = errors.New("dataset: truncated data")

	// ErrCountMismatch is returned when image and label counts differ.
	ErrCountMismatch = errors.New("dataset: image and label counts differ")

	// ErrEmptyBatch is returned when a batch would contain no samples.
	ErrEmptyBatch = errors.New("dataset: empty batch")
)

// Dataset pairs one sample per image row with its label.
type Dataset struct {
	Images *tensor.Matrix // [samples, features]
	Labels []uint8        // [samples]
}

// New pairs images with labels after checking that their counts agree.
func New(images *tensor.Matrix, labels []uint8) (*Dataset, error) {
	if images.Rows() != len(labels) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, images.Rows(), len(labels))
	}
	return &Dataset{Images: images, Labels: labels}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Features returns the number of values per sample.
func (d *Dataset) Features() int {
	return d.Images.Cols()
}

// Classes returns one more than the largest label, or 0 for an empty set.
func (d *Dataset) Classes() int {
	classes := 0
	for _, l := range d.Labels {
		if int(l)+1 > classes {
			classes = int(l) + 1
		}
	}
	return classes
}
