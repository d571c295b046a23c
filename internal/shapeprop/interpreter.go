// Package shapeprop executes a traced graph on concrete inputs and annotates
// every tensor-producing node with the shape and element type it produced.
package shapeprop

import (
	"fmt"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/internal/ops"
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/pkg/errors"
)

// ErrAlreadyPropagated is returned when Propagate is called twice on the
// same interpreter. Annotations are written in place, so a graph must be
// traced again before it is re-run.
var ErrAlreadyPropagated = errors.New("shapeprop: graph already propagated")

// Propagator executes a graph and leaves tensor metadata on its nodes.
type Propagator interface {
	// Propagate runs the graph on inputs and returns the value of its
	// output node.
	Propagate(inputs ...*tensor.Tensor) (any, error)

	// Graph returns the graph being annotated.
	Graph() *graph.Graph
}

// PropagationError reports the node at which execution failed.
type PropagationError struct {
	Node   string
	Op     graph.Op
	Target string
	Err    error
}

// Error implements the error interface.
func (e *PropagationError) Error() string {
	return fmt.Sprintf("propagate %%%s (%s %s): %v", e.Node, e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *PropagationError) Unwrap() error {
	return e.Err
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRegistry sets the ops used for call_function nodes. Defaults to
// ops.Default().
func WithRegistry(r *ops.Registry) Option {
	return func(ip *Interpreter) {
		ip.registry = r
	}
}

// WithMapAnnotations stores metadata as generic maps (graph.TensorMeta.AsMap)
// instead of graph.TensorMeta records.
func WithMapAnnotations() Option {
	return func(ip *Interpreter) {
		ip.mapAnnotations = true
	}
}

// Interpreter is the default Propagator.
type Interpreter struct {
	g              *graph.Graph
	ix             *naming.Index
	registry       *ops.Registry
	mapAnnotations bool
	propagated     bool
}

// New creates an interpreter for g, a graph traced from root.
func New(g *graph.Graph, root nn.Module, opts ...Option) (*Interpreter, error) {
	if g == nil {
		return nil, errors.New("shapeprop: nil graph")
	}
	ix, err := naming.Build(root)
	if err != nil {
		return nil, errors.Wrap(err, "shapeprop")
	}
	ip := &Interpreter{
		g:        g,
		ix:       ix,
		registry: ops.Default(),
	}
	for _, opt := range opts {
		opt(ip)
	}
	return ip, nil
}

// Graph implements Propagator.
func (ip *Interpreter) Graph() *graph.Graph {
	return ip.g
}

// Propagate implements Propagator.
//
// Inputs bind to placeholder nodes in order. Execution stops at the first
// failing node; annotations written before it stay on the graph.
func (ip *Interpreter) Propagate(inputs ...*tensor.Tensor) (any, error) {
	if ip.propagated {
		return nil, ErrAlreadyPropagated
	}
	ip.propagated = true

	env := make(map[string]any, ip.g.Len())
	next := 0
	var result any

	for _, n := range ip.g.Nodes() {
		var (
			v   any
			err error
		)
		switch n.Op {
		case graph.Placeholder:
			if next >= len(inputs) {
				err = errors.Errorf("missing input %d", next)
				break
			}
			if inputs[next] == nil {
				err = errors.Errorf("input %d is nil", next)
				break
			}
			v = inputs[next]
			next++
		case graph.GetAttr:
			v, err = ip.getAttr(n.Target)
		case graph.CallModule:
			v, err = ip.callModule(n, env)
		case graph.CallFunction:
			v, err = ip.callFunction(n, env)
		case graph.Output:
			args := resolveArgs(n.Args, env)
			if len(args) != 1 {
				err = errors.Errorf("output expects 1 argument, got %d", len(args))
				break
			}
			v = args[0]
			result = v
		default:
			err = errors.Errorf("unknown op %v", n.Op)
		}
		if err != nil {
			return nil, &PropagationError{Node: n.Name, Op: n.Op, Target: n.Target, Err: err}
		}

		env[n.Name] = v
		ip.annotate(n, v)
	}

	if next != len(inputs) {
		return nil, &PropagationError{
			Node: "output", Op: graph.Output, Target: "output",
			Err: errors.Errorf("graph takes %d inputs, got %d", next, len(inputs)),
		}
	}
	return result, nil
}

func (ip *Interpreter) getAttr(path string) (any, error) {
	p, ok := ip.ix.ParameterAt(path)
	if !ok {
		return nil, errors.Errorf("no parameter %q", path)
	}
	if p.Tensor() == nil {
		return nil, errors.Errorf("parameter %q has no value", path)
	}
	return p.Tensor(), nil
}

func (ip *Interpreter) callModule(n *graph.Node, env map[string]any) (any, error) {
	m, ok := ip.ix.Module(n.Target)
	if !ok {
		return nil, errors.Errorf("no module %q", n.Target)
	}
	leaf, ok := m.(nn.Leaf)
	if !ok {
		return nil, errors.Errorf("module %T cannot be executed", m)
	}

	args := resolveArgs(n.Args, env)
	xs := make([]*tensor.Tensor, len(args))
	for i, a := range args {
		x, ok := a.(*tensor.Tensor)
		if !ok {
			return nil, errors.Errorf("argument %d: expected tensor, got %T", i, a)
		}
		xs[i] = x
	}

	out, err := leaf.Forward(xs...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ip *Interpreter) callFunction(n *graph.Node, env map[string]any) (any, error) {
	return ip.registry.Execute(n.Target, resolveArgs(n.Args, env))
}

// annotate records metadata for tensor values only. Nodes producing other
// values (shapes, scalars) are left without an entry.
func (ip *Interpreter) annotate(n *graph.Node, v any) {
	t, ok := v.(*tensor.Tensor)
	if !ok || t == nil {
		return
	}
	if n.Meta == nil {
		n.Meta = make(map[string]any)
	}
	meta := graph.NewTensorMeta(t)
	if ip.mapAnnotations {
		n.Meta[graph.TensorMetaKey] = meta.AsMap()
		return
	}
	n.Meta[graph.TensorMetaKey] = meta
}

func resolveArgs(args []any, env map[string]any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if n, ok := a.(*graph.Node); ok {
			out[i] = env[n.Name]
			continue
		}
		out[i] = a
	}
	return out
}
