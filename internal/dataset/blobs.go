package dataset

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/logos/internal/tensor"
)

const (
	blobHigh   = 0.8
	blobLow    = 0.2
	blobSpread = 0.05
)

// Blobs generates n samples of dim features drawn around one center per
// class. Class c's center is high on every feature j with j%classes == c and
// low elsewhere, so the classes are linearly separable whenever dim >= classes.
// Labels cycle through the classes; values are clamped to [0, 1].
func Blobs(n, dim, classes int, seed int64) (*Dataset, error) {
	if n <= 0 || dim <= 0 || classes <= 0 || classes > 256 {
		return nil, fmt.Errorf("%w: blobs n=%d dim=%d classes=%d", tensor.ErrShapeMismatch, n, dim, classes)
	}

	images, err := tensor.NewMatrix(n, dim)
	if err != nil {
		return nil, err
	}
	labels := make([]uint8, n)

	//nolint:gosec // Using math/rand for synthetic data (not security-critical)
	rng := rand.New(rand.NewSource(seed))
	for i := range labels {
		class := i % classes
		labels[i] = uint8(class)

		row := images.Row(i)
		for j := range row {
			center := float32(blobLow)
			if j%classes == class {
				center = blobHigh
			}
			row[j] = clamp01(center + float32(rng.NormFloat64())*blobSpread)
		}
	}

	return New(images, labels)
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
