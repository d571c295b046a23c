package tailor

import (
	"math/rand"

	"github.com/born-ml/tailor/internal/tensor"
)

// InputFunc creates the probe tensor fed to shape propagation. Only the
// shape and dtype of the result matter for the records produced.
type InputFunc func(shape tensor.Shape) (*tensor.Tensor, error)

// RandomInput draws values from the standard normal distribution.
func RandomInput(shape tensor.Shape) (*tensor.Tensor, error) {
	return tensor.Randn(shape, nil)
}

// ZeroInput fills the probe with zeros.
func ZeroInput(shape tensor.Shape) (*tensor.Tensor, error) {
	return tensor.New(shape, tensor.Float32)
}

// SeededInput draws normal values from a generator seeded with seed, so
// every probe of a given shape holds the same values.
func SeededInput(seed int64) InputFunc {
	return func(shape tensor.Shape) (*tensor.Tensor, error) {
		return tensor.Randn(shape, rand.New(rand.NewSource(seed)))
	}
}
