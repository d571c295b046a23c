// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/tensor"
)

// Module is implemented by every layer and container.
type Module = nn.Module

// Child is a named submodule.
type Child = nn.Child

// Leaf is a module computing its output directly.
type Leaf = nn.Leaf

// Composite is a module traced through its children and function ops.
type Composite = nn.Composite

// Builder records the calls a Composite makes while being traced.
type Builder = nn.Builder

// Mutable is a container whose children can be replaced.
type Mutable = nn.Mutable

// Parameter is a tensor owned by a module.
type Parameter = nn.Parameter

// NewParameter creates a trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer.
type Linear = nn.Linear

// NewLinear creates a linear layer with Xavier initialization.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, true)
func NewLinear(inFeatures, outFeatures int, useBias bool) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, useBias)
}

// Conv2D is a 2D convolution over NCHW input.
type Conv2D = nn.Conv2D

// NewConv2D creates a 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 1, true) // in=1, out=32, kernel=3x3, stride=1, padding=1
func NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding int, useBias bool) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias)
}

// MaxPool2D is a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride)
}

// LayerNorm normalizes the last dimension.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a layer normalization over normalizedShape features.
func NewLayerNorm(normalizedShape int, epsilon float32) *LayerNorm {
	return nn.NewLayerNorm(normalizedShape, epsilon)
}

// Activations

// ReLU is the rectified linear unit.
type ReLU = nn.ReLU

// NewReLU creates a ReLU layer.
func NewReLU() *ReLU { return nn.NewReLU() }

// Sigmoid is the logistic activation.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a Sigmoid layer.
func NewSigmoid() *Sigmoid { return nn.NewSigmoid() }

// Tanh is the hyperbolic tangent activation.
type Tanh = nn.Tanh

// NewTanh creates a Tanh layer.
func NewTanh() *Tanh { return nn.NewTanh() }

// Softmax normalizes the last dimension.
type Softmax = nn.Softmax

// NewSoftmax creates a Softmax layer.
func NewSoftmax() *Softmax { return nn.NewSoftmax() }

// Shape layers

// Flatten collapses trailing dimensions.
type Flatten = nn.Flatten

// NewFlatten creates a Flatten layer keeping the batch dimension.
func NewFlatten() *Flatten { return nn.NewFlatten() }

// Dropout is the identity at inspection time.
type Dropout = nn.Dropout

// NewDropout creates a Dropout layer.
func NewDropout(p float64) *Dropout { return nn.NewDropout(p) }

// Identity returns its input.
type Identity = nn.Identity

// NewIdentity creates an Identity layer.
func NewIdentity() *Identity { return nn.NewIdentity() }

// Half casts its input to float16.
type Half = nn.Half

// NewHalf creates a Half layer.
func NewHalf() *Half { return nn.NewHalf() }

// Composites

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential chains modules named "0", "1", ...
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// NewNamedSequential chains explicitly named modules.
func NewNamedSequential(children ...Child) *Sequential {
	return nn.NewNamedSequential(children...)
}

// Residual computes act(body(x) + x).
type Residual = nn.Residual

// NewResidual creates a residual block; activation names a function op or is "".
func NewResidual(body Module, activation string) *Residual {
	return nn.NewResidual(body, activation)
}

// Scale multiplies its input by a learnable per-feature vector.
type Scale = nn.Scale

// NewScale creates a Scale over features.
func NewScale(features int) *Scale { return nn.NewScale(features) }
