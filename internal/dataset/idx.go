package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/logos/internal/tensor"
)

const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ReadIDXImages reads an IDX image file and scales pixels to [0, 1].
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(filename string) (*tensor.Matrix, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	images, err := DecodeIDXImages(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return images, nil
}

// DecodeIDXImages decodes IDX image data from r.
func DecodeIDXImages(r io.Reader) (*tensor.Matrix, error) {
	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", truncated(err))
	}
	if header.Magic != idxImagesMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header.Magic, idxImagesMagic)
	}
	if header.Rows == 0 || header.Cols == 0 {
		return nil, fmt.Errorf("%w: image dims %d×%d", tensor.ErrShapeMismatch, header.Rows, header.Cols)
	}

	features := int(header.Rows) * int(header.Cols)
	images, err := tensor.NewMatrix(int(header.Count), features)
	if err != nil {
		return nil, err
	}

	const inv255 = 1.0 / 255.0
	pixels := make([]byte, features)
	for i := 0; i < images.Rows(); i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, truncated(err))
		}
		row := images.Row(i)
		for j, p := range pixels {
			row[j] = float32(p) * inv255
		}
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadIDXLabels(filename string) ([]uint8, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	labels, err := DecodeIDXLabels(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return labels, nil
}

// DecodeIDXLabels decodes IDX label data from r.
func DecodeIDXLabels(r io.Reader) ([]uint8, error) {
	var header struct {
		Magic, Count uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", truncated(err))
	}
	if header.Magic != idxLabelsMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header.Magic, idxLabelsMagic)
	}

	labels := make([]uint8, header.Count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", truncated(err))
	}
	return labels, nil
}

// LoadIDX loads an IDX image/label file pair into a Dataset.
func LoadIDX(imagesPath, labelsPath string) (*Dataset, error) {
	images, err := ReadIDXImages(imagesPath)
	if err != nil {
		return nil, err
	}
	labels, err := ReadIDXLabels(labelsPath)
	if err != nil {
		return nil, err
	}
	return New(images, labels)
}
