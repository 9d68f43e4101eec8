package nn

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/born-ml/logos/internal/tensor"
)

// HeNormal fills m with draws from N(0, 2/fanIn) (He/Kaiming initialization).
//
// Draws come from rng so that a fixed seed reproduces the same weights.
func HeNormal(rng *rand.Rand, fanIn int, m *tensor.Matrix) {
	std := math32.Sqrt(2 / float32(fanIn))

	data := m.Data()
	for i := range data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		data[i] = float32(rng.NormFloat64()) * std
	}
}
