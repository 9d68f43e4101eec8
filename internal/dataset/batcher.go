package dataset

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/logos/internal/tensor"
)

// Batcher slices a Dataset into mini-batches following a sample order that
// can be reshuffled between epochs.
//
// Example:
//
//	b := dataset.NewBatcher(train, 123)
//	var xb tensor.Matrix
//	var yb []uint8
//	for epoch := 0; epoch < epochs; epoch++ {
//	    b.Shuffle()
//	    for start := 0; start < b.Len(); start += 64 {
//	        yb, _ = b.Batch(start, 64, &xb, yb)
//	        ...
//	    }
//	}
type Batcher struct {
	data  *Dataset
	order []int
	rng   *rand.Rand
}

// NewBatcher creates a Batcher visiting samples in their stored order until
// the first Shuffle. seed drives every later Shuffle.
func NewBatcher(data *Dataset, seed int64) *Batcher {
	order := make([]int, data.Len())
	for i := range order {
		order[i] = i
	}
	return &Batcher{
		data:  data,
		order: order,
		//nolint:gosec // Using math/rand for shuffling (not security-critical)
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Len returns the number of samples.
func (b *Batcher) Len() int {
	return len(b.order)
}

// NumBatches returns how many batches of size cover the dataset; the last one may be short.
func (b *Batcher) NumBatches(size int) int {
	if size <= 0 {
		return 0
	}
	return (len(b.order) + size - 1) / size
}

// Shuffle permutes the visiting order.
func (b *Batcher) Shuffle() {
	b.rng.Shuffle(len(b.order), func(i, j int) {
		b.order[i], b.order[j] = b.order[j], b.order[i]
	})
}

// Order returns the current visiting order. The slice aliases Batcher state.
func (b *Batcher) Order() []int {
	return b.order
}

// Batch copies samples order[start : start+size] (clipped to the dataset end)
// into xb and returns their labels in yb, reusing the storage of both when the
// batch shape is unchanged.
//
// Returns ErrEmptyBatch when start is at or past the end of the dataset.
func (b *Batcher) Batch(start, size int, xb *tensor.Matrix, yb []uint8) ([]uint8, error) {
	end := min(start+size, len(b.order))
	if start < 0 || size <= 0 || end <= start {
		return yb, fmt.Errorf("%w: start %d size %d of %d", ErrEmptyBatch, start, size, len(b.order))
	}
	rows, features := end-start, b.data.Features()

	if err := xb.Ensure(rows, features); err != nil {
		return yb, err
	}
	if cap(yb) >= rows {
		yb = yb[:rows]
	} else {
		yb = make([]uint8, rows)
	}

	for i := 0; i < rows; i++ {
		idx := b.order[start+i]
		yb[i] = b.data.Labels[idx]
		copy(xb.Row(i), b.data.Images.Row(idx))
	}
	return yb, nil
}
