package nn

import (
	"github.com/born-ml/tailor/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU struct {
	noChildren
	noParameters

	op string
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{op: "relu"}
}

// Forward applies ReLU activation.
func (r *ReLU) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single(r.op, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.ReLU(input), nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
type Sigmoid struct {
	noChildren
	noParameters

	op string
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{op: "sigmoid"}
}

// Forward applies the sigmoid.
func (s *Sigmoid) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single(s.op, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Sigmoid(input), nil
}

// Tanh is a hyperbolic tangent activation module.
type Tanh struct {
	noChildren
	noParameters

	op string
}

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{op: "tanh"}
}

// Forward applies tanh.
func (t *Tanh) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single(t.op, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Tanh(input), nil
}

// Softmax normalizes the last dimension into a probability distribution.
type Softmax struct {
	noChildren
	noParameters

	op string
}

// NewSoftmax creates a new Softmax module.
func NewSoftmax() *Softmax {
	return &Softmax{op: "softmax"}
}

// Forward applies softmax over the last dimension.
func (s *Softmax) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single(s.op, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Softmax(input), nil
}
