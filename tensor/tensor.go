// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/tailor/internal/tensor"
)

// Tensor is a dense row-major tensor.
type Tensor = tensor.Tensor

// Shape lists the dimensions of a tensor.
type Shape = tensor.Shape

// DType is the element type of a tensor.
type DType = tensor.DType

// Supported element types.
const (
	Float32  = tensor.Float32
	Float64  = tensor.Float64
	Float16  = tensor.Float16
	BFloat16 = tensor.BFloat16
	Int32    = tensor.Int32
	Int64    = tensor.Int64
	Uint8    = tensor.Uint8
	Bool     = tensor.Bool
)

// New creates a zero-filled tensor.
func New(shape Shape, dtype DType) (*Tensor, error) {
	return tensor.New(shape, dtype)
}

// FromSlice creates a Float32 tensor from data.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a zero-filled tensor. It panics on an invalid shape.
func Zeros(shape Shape, dtype DType) *Tensor {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a tensor filled with ones. It panics on an invalid shape.
func Ones(shape Shape, dtype DType) *Tensor {
	return tensor.Ones(shape, dtype)
}

// Randn creates a Float32 tensor drawn from N(0, 1). A nil rng uses the
// global source.
func Randn(shape Shape, rng *rand.Rand) (*Tensor, error) {
	return tensor.Randn(shape, rng)
}

// DTypeName returns the lowercase name of dt ("float32").
func DTypeName(dt DType) string {
	return tensor.DTypeName(dt)
}
