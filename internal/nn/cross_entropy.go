package nn

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/born-ml/logos/internal/tensor"
)

// probabilityFloor keeps log away from -Inf when a true-class probability underflows.
const probabilityFloor = 1e-12

// Softmax writes the row-wise softmax of logits into probs.
//
// Each row's maximum is subtracted before exponentiating:
//
//	probs[i,j] = exp(logits[i,j] - max_j logits[i,:]) / Σ_k exp(logits[i,k] - max)
//
// Returns tensor.ErrEmptyInput if logits has zero rows or columns.
func Softmax(logits, probs *tensor.Matrix) error {
	if logits.Empty() {
		return fmt.Errorf("%w: softmax of %v", tensor.ErrEmptyInput, logits.Shape())
	}
	if err := probs.Ensure(logits.Rows(), logits.Cols()); err != nil {
		return fmt.Errorf("softmax: %w", err)
	}

	for i := 0; i < logits.Rows(); i++ {
		in, out := logits.Row(i), probs.Row(i)

		maxVal := in[0]
		for _, v := range in[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sum float32
		for j, v := range in {
			e := math32.Exp(v - maxVal)
			out[j] = e
			sum += e
		}
		for j := range out {
			out[j] /= sum
		}
	}
	return nil
}

// CrossEntropy computes the mean negative log-likelihood of labels under probs
// and writes the gradient with respect to the logits into dLogits:
//
//	loss      = mean_i -log(max(probs[i, label_i], 1e-12))
//	dLogits_i = (probs_i - onehot(label_i)) / N
//
// That is the closed-form gradient of softmax followed by cross-entropy, so no
// separate softmax backward pass is needed. Labels are validated before
// dLogits is touched.
func CrossEntropy(probs *tensor.Matrix, labels []uint8, dLogits *tensor.Matrix) (float32, error) {
	n, classes := probs.Rows(), probs.Cols()
	if probs.Empty() {
		return 0, fmt.Errorf("%w: cross-entropy of %v", tensor.ErrEmptyInput, probs.Shape())
	}
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d rows", ErrLabelCountMismatch, len(labels), n)
	}
	for i, label := range labels {
		if int(label) >= classes {
			return 0, fmt.Errorf("%w: label %d at row %d, %d classes", ErrLabelOutOfRange, label, i, classes)
		}
	}
	if err := dLogits.Ensure(n, classes); err != nil {
		return 0, fmt.Errorf("cross-entropy: %w", err)
	}

	scale := 1 / float32(n)
	var total float32
	for i, label := range labels {
		p, g := probs.Row(i), dLogits.Row(i)

		pTrue := p[label]
		if pTrue < probabilityFloor {
			pTrue = probabilityFloor
		}
		total -= math32.Log(pTrue)

		for j, v := range p {
			g[j] = v * scale
		}
		g[label] -= scale
	}

	return total * scale, nil
}

// ArgmaxRow returns the column index of the largest value in the given row.
// Ties resolve to the lowest index.
//
// Returns tensor.ErrOutOfBounds if row is not a valid row index or m has no columns.
func ArgmaxRow(m *tensor.Matrix, row int) (int, error) {
	if row < 0 || row >= m.Rows() || m.Cols() == 0 {
		return 0, fmt.Errorf("%w: row %d of %v", tensor.ErrOutOfBounds, row, m.Shape())
	}

	values := m.Row(row)
	best := 0
	for j, v := range values[1:] {
		if v > values[best] {
			best = j + 1
		}
	}
	return best, nil
}

// SoftmaxCrossEntropy is the fused loss head used by Sequential.TrainStep.
//
// It owns no storage: probabilities are written into the probs matrix passed
// to Compute, which Sequential carves from its per-step arena.
type SoftmaxCrossEntropy struct{}

// Compute runs Softmax on logits into probs, then CrossEntropy into dLogits.
func (SoftmaxCrossEntropy) Compute(logits *tensor.Matrix, labels []uint8, probs, dLogits *tensor.Matrix) (float32, error) {
	if len(labels) != logits.Rows() {
		return 0, fmt.Errorf("%w: %d labels for %d rows", ErrLabelCountMismatch, len(labels), logits.Rows())
	}
	if err := Softmax(logits, probs); err != nil {
		return 0, err
	}
	return CrossEntropy(probs, labels, dLogits)
}
