package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/logos/internal/tensor"
)

// LoadImages reads num images of rows×cols little-endian float32 pixels from a
// raw ".mat" dump into a [num, rows*cols] matrix. Values are used as stored.
func LoadImages(path string, num, rows, cols int) (*tensor.Matrix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	images, err := tensor.NewMatrix(num, rows*cols)
	if err != nil {
		return nil, err
	}

	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, images.Data()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, truncated(err))
	}
	return images, nil
}

// LoadLabels reads num raw label bytes from a ".mat" dump.
func LoadLabels(path string, num int) ([]uint8, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	labels := make([]uint8, num)
	if _, err := io.ReadFull(bufio.NewReader(file), labels); err != nil {
		return nil, fmt.Errorf("%s: %w", path, truncated(err))
	}
	return labels, nil
}

// LoadMat loads an image/label pair of ".mat" dumps into a Dataset.
func LoadMat(imagesPath, labelsPath string, num, rows, cols int) (*Dataset, error) {
	images, err := LoadImages(imagesPath, num, rows, cols)
	if err != nil {
		return nil, err
	}
	labels, err := LoadLabels(labelsPath, num)
	if err != nil {
		return nil, err
	}
	return New(images, labels)
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}
