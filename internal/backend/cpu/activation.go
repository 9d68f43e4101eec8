package cpu

import (
	"fmt"

	"github.com/born-ml/logos/internal/tensor"
)

// ReLU writes max(0, x) for every element of in into out and records in mask
// which elements were positive. mask is resized like SumRows' result; pass
// the previous mask to reuse its storage.
func ReLU(in, out *tensor.Matrix, mask []bool) ([]bool, error) {
	if err := out.Ensure(in.Rows(), in.Cols()); err != nil {
		return mask, fmt.Errorf("relu: %w", err)
	}

	n := in.Len()
	if cap(mask) >= n {
		mask = mask[:n]
	} else {
		mask = make([]bool, n)
	}

	dst := out.Data()
	for i, v := range in.Data() {
		pos := v > 0
		mask[i] = pos
		if pos {
			dst[i] = v
		} else {
			dst[i] = 0
		}
	}
	return mask, nil
}

// ReLUBackward writes grad into out where mask is set and zero elsewhere.
func ReLUBackward(grad *tensor.Matrix, mask []bool, out *tensor.Matrix) error {
	if grad.Len() != len(mask) {
		return fmt.Errorf("%w: relu backward gradient %v for mask of %d", tensor.ErrShapeMismatch, grad.Shape(), len(mask))
	}
	if err := out.Ensure(grad.Rows(), grad.Cols()); err != nil {
		return fmt.Errorf("relu backward: %w", err)
	}

	g, dx := grad.Data(), out.Data()
	for i, pass := range mask {
		if pass {
			dx[i] = g[i]
		} else {
			dx[i] = 0
		}
	}
	return nil
}
