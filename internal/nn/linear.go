package nn

import (
	"fmt"

	"github.com/born-ml/tailor/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, true)
//	output, err := layer.Forward(input) // [32, 784] -> [32, 128]
type Linear struct {
	noChildren

	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features] or nil
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int, useBias bool) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weightShape := tensor.Shape{outFeatures, inFeatures}
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, weightShape)),
	}
	if useBias {
		l.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}, tensor.Float32))
	}
	return l
}

// Forward computes y = x @ W.T + b.
//
// Leading dimensions of x are treated as batch dimensions.
func (l *Linear) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	input, err := single("linear", inputs)
	if err != nil {
		return nil, err
	}

	inputShape := input.Shape()
	if len(inputShape) < 1 || inputShape[len(inputShape)-1] != l.inFeatures {
		return nil, fmt.Errorf("linear: expected input with %d features, got shape %v", l.inFeatures, inputShape)
	}

	x, err := input.Reshape(-1, l.inFeatures)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	wT, err := tensor.Transpose(l.weight.Tensor())
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	output, err := tensor.MatMul(x, wT)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	if l.bias != nil {
		if output, err = tensor.Add(output, l.bias.Tensor()); err != nil {
			return nil, fmt.Errorf("linear: %w", err)
		}
	}

	outShape := append(inputShape[:len(inputShape)-1:len(inputShape)-1], l.outFeatures)
	return output.Reshape(outShape...)
}

// Parameters returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// single extracts the only input of a one-input module.
func single(layer string, inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	if len(inputs) != 1 || inputs[0] == nil {
		return nil, fmt.Errorf("%s: expected exactly one input tensor, got %d", layer, len(inputs))
	}
	return inputs[0], nil
}
