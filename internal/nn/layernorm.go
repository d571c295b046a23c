package nn

import (
	"fmt"

	"github.com/born-ml/tailor/internal/tensor"
)

// LayerNorm applies Layer Normalization over the last dimension of its input.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// gamma is initialized to ones and beta to zeros. gamma is the primary
// parameter: a LayerNorm counts as trainable while gamma requires gradients.
type LayerNorm struct {
	noChildren

	Gamma   *Parameter // learnable scale [d_model]
	Beta    *Parameter // learnable shift [d_model]
	Epsilon float32    // numerical stability constant
}

// NewLayerNorm creates a new LayerNorm layer over a last dimension of normalizedShape.
func NewLayerNorm(normalizedShape int, epsilon float32) *LayerNorm {
	if normalizedShape <= 0 {
		panic(fmt.Sprintf("layernorm: invalid normalized shape %d", normalizedShape))
	}
	return &LayerNorm{
		Gamma:   NewParameter("gamma", tensor.Ones(tensor.Shape{normalizedShape}, tensor.Float32)),
		Beta:    NewParameter("beta", tensor.Zeros(tensor.Shape{normalizedShape}, tensor.Float32)),
		Epsilon: epsilon,
	}
}

// Forward normalizes the input.
func (l *LayerNorm) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single("layernorm", inputs)
	if err != nil {
		return nil, err
	}
	return tensor.LayerNorm(input, l.Gamma.Tensor(), l.Beta.Tensor(), l.Epsilon)
}

// Parameters returns [gamma, beta].
func (l *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{l.Gamma, l.Beta}
}
