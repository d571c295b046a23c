package nn

import (
	"fmt"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/tensor"
)

// Residual wraps a body with a skip connection: y = act(body(x) + x).
//
// The addition and the optional activation are recorded as function ops, so
// they belong to the Residual itself rather than to a named child.
type Residual struct {
	noParameters

	body       Module
	activation string // function op applied after the sum, or ""
}

// NewResidual creates a residual block. activation names a function op such
// as "relu"; pass "" for none.
func NewResidual(body Module, activation string) *Residual {
	if body == nil {
		panic("residual: nil body")
	}
	return &Residual{body: body, activation: activation}
}

// Children returns the body.
func (r *Residual) Children() []Child {
	return []Child{{Name: "body", Module: r.body}}
}

// SetChild replaces the body.
func (r *Residual) SetChild(name string, m Module) error {
	if name != "body" {
		return fmt.Errorf("residual: no child named %q", name)
	}
	if m == nil {
		return fmt.Errorf("residual: nil replacement for %q", name)
	}
	r.body = m
	return nil
}

// Trace records body(x) + x followed by the activation.
func (r *Residual) Trace(b Builder, inputs ...*graph.Node) (*graph.Node, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("residual: expected exactly one input, got %d", len(inputs))
	}
	x := inputs[0]
	y, err := b.Call(r.body, x)
	if err != nil {
		return nil, err
	}
	sum, err := b.Apply("add", y, x)
	if err != nil {
		return nil, err
	}
	if r.activation == "" {
		return sum, nil
	}
	return b.Apply(r.activation, sum)
}

// Scale multiplies its input by a learnable per-feature vector.
//
// The vector is read through Builder.Attr, so a traced Scale shows up as a
// get_attr node followed by a "mul" function op.
type Scale struct {
	noChildren

	weight *Parameter // [features]
}

// NewScale creates a Scale over the last dimension, initialized to ones.
func NewScale(features int) *Scale {
	if features <= 0 {
		panic(fmt.Sprintf("scale: invalid features %d", features))
	}
	return &Scale{weight: NewParameter("weight", tensor.Ones(tensor.Shape{features}, tensor.Float32))}
}

// Parameters returns [weight].
func (s *Scale) Parameters() []*Parameter {
	return []*Parameter{s.weight}
}

// Trace records x * weight.
func (s *Scale) Trace(b Builder, inputs ...*graph.Node) (*graph.Node, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("scale: expected exactly one input, got %d", len(inputs))
	}
	w, err := b.Attr(s.weight)
	if err != nil {
		return nil, err
	}
	return b.Apply("mul", inputs[0], w)
}
