package nn

import (
	"github.com/born-ml/tailor/internal/tensor"
)

// Parameter represents a learnable tensor owned by a module.
//
// Parameters start out trainable. Freezing a parameter clears RequiresGrad;
// introspection reports a layer as trainable only while its primary
// parameter still requires gradients.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	weight.SetRequiresGrad(false) // freeze
type Parameter struct {
	name         string         // Parameter name (e.g., "weight", "bias")
	tensor       *tensor.Tensor // The parameter tensor
	requiresGrad bool
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:         name,
		tensor:       t,
		requiresGrad: true,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// NumElements returns the number of scalar elements in the parameter.
func (p *Parameter) NumElements() int {
	if p.tensor == nil {
		return 0
	}
	return p.tensor.NumElements()
}

// RequiresGrad reports whether the parameter is trainable.
func (p *Parameter) RequiresGrad() bool {
	return p.requiresGrad
}

// SetRequiresGrad marks the parameter trainable or frozen.
func (p *Parameter) SetRequiresGrad(requiresGrad bool) {
	p.requiresGrad = requiresGrad
}
