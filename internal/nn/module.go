// Package nn implements neural network modules that can be traced and inspected.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: parameters and named children of every component
//   - Leaf: a module executed as a single graph node (Linear, Conv2D, ReLU, ...)
//   - Composite: a module traced through, whose body is recorded node by node
//     (Sequential, Residual, Scale)
//   - Parameter: learnable tensors with a trainability flag
//
// Design inspired by PyTorch's nn.Module, expressed with Go interfaces.
package nn

import (
	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules form a tree: a module owns its direct parameters and its direct
// named children. The dotted path of child names from the root identifies a
// module within a model (e.g. "features.0").
type Module interface {
	// Parameters returns the parameters owned directly by this module,
	// in declaration order. Children's parameters are not included.
	Parameters() []*Parameter

	// Children returns the direct named submodules in declaration order.
	Children() []Child
}

// Child is a named submodule.
type Child struct {
	Name   string
	Module Module
}

// Leaf is a module whose forward computation is a single kernel.
//
// Tracing records one call_module node per Leaf invocation; shape
// propagation runs Forward on concrete tensors.
type Leaf interface {
	Module

	// Forward computes the output of the module given input tensors.
	Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error)
}

// Composite is a module whose forward computation is expressed in terms of
// its children and function ops. Tracing calls Trace with a Builder that
// records each step.
type Composite interface {
	Module

	// Trace records the forward computation on b and returns the result node.
	Trace(b Builder, inputs ...*graph.Node) (*graph.Node, error)
}

// Builder records the steps of a Composite's forward computation.
type Builder interface {
	// Call invokes a module that belongs to the traced model.
	Call(m Module, args ...*graph.Node) (*graph.Node, error)

	// Apply invokes a free function op (e.g. "add", "flatten"). Arguments
	// are graph nodes or constants.
	Apply(fn string, args ...any) (*graph.Node, error)

	// Attr reads a parameter owned by a module of the traced model.
	Attr(p *Parameter) (*graph.Node, error)
}

// Mutable is implemented by containers whose children can be substituted.
type Mutable interface {
	Module

	// SetChild replaces the direct child registered under name.
	SetChild(name string, m Module) error
}

// noChildren is embedded by modules without submodules.
type noChildren struct{}

// Children returns nil.
func (noChildren) Children() []Child { return nil }

// noParameters is embedded by modules without learnable state.
type noParameters struct{}

// Parameters returns nil.
func (noParameters) Parameters() []*Parameter { return nil }
