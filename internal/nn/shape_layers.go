package nn

import (
	"fmt"

	"github.com/born-ml/tailor/internal/tensor"
)

// Flatten collapses every dimension from StartDim onwards.
// The default StartDim of 1 keeps the batch dimension.
type Flatten struct {
	noChildren
	noParameters

	StartDim int
}

// NewFlatten creates a Flatten layer keeping the batch dimension.
func NewFlatten() *Flatten {
	return &Flatten{StartDim: 1}
}

// Forward flattens the input.
func (f *Flatten) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single("flatten", inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Flatten(input, f.StartDim)
}

// Dropout zeroes activations with probability P during training. Modules
// are only inspected here, never trained, so Forward is the identity.
type Dropout struct {
	noChildren
	noParameters

	P float64
}

// NewDropout creates a Dropout layer.
func NewDropout(p float64) *Dropout {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability %v out of range [0, 1)", p))
	}
	return &Dropout{P: p}
}

// Forward returns its input unchanged.
func (d *Dropout) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	return single("dropout", inputs)
}

// Identity returns its input unchanged. It is the usual stand-in when a
// sublayer is rewritten away.
type Identity struct {
	noChildren
	noParameters

	op string
}

// NewIdentity creates an Identity layer.
func NewIdentity() *Identity {
	return &Identity{op: "identity"}
}

// Forward returns its input unchanged.
func (i *Identity) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	return single(i.op, inputs)
}

// Half casts its input to float16.
type Half struct {
	noChildren
	noParameters

	op string
}

// NewHalf creates a Half layer.
func NewHalf() *Half {
	return &Half{op: "half"}
}

// Forward casts the input to float16.
func (h *Half) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single(h.op, inputs)
	if err != nil {
		return nil, err
	}
	return tensor.Cast(input, tensor.Float16)
}
