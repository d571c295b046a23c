package nn

import (
	"fmt"

	"github.com/born-ml/tailor/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer without learnable parameters.
//
// Example:
//
//	pool := nn.NewMaxPool2D(2, 2)
//	output, err := pool.Forward(input) // [32, 64, 28, 28] -> [32, 64, 14, 14]
type MaxPool2D struct {
	noChildren
	noParameters

	kernelSize int
	stride     int
}

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward applies max pooling.
func (m *MaxPool2D) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single("maxpool2d", inputs)
	if err != nil {
		return nil, err
	}
	return tensor.MaxPool2D(input, m.kernelSize, m.stride)
}
