package tensor

import (
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(Shape{3, 4}, Float32)
func Zeros(shape Shape, dtype DType) *Tensor {
	t, err := New(shape, dtype)
	if err != nil {
		panic(err) // Shape validation should prevent this
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DType) *Tensor {
	return Full(shape, dtype, 1)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, dtype DType, value float32) *Tensor {
	t := Zeros(shape, dtype)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Randn creates a Float32 tensor with values drawn from N(0, 1).
//
// A nil rng uses the global math/rand source.
func Randn(shape Shape, rng *rand.Rand) (*Tensor, error) {
	t, err := New(shape, Float32)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		if rng != nil {
			t.data[i] = float32(rng.NormFloat64())
		} else {
			//nolint:gosec // Probe inputs are not security-critical.
			t.data[i] = float32(rand.NormFloat64())
		}
	}
	return t, nil
}

// Uniform creates a Float32 tensor with values drawn from U(-bound, bound).
func Uniform(shape Shape, bound float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape, Float32)
	for i := range t.data {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			//nolint:gosec // Using math/rand for weight initialization (not security-critical)
			u = rand.Float64()
		}
		t.data[i] = float32((u*2.0 - 1.0) * bound)
	}
	return t
}
