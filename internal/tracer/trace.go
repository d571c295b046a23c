package tracer

import (
	"fmt"
	"reflect"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/internal/ops"
	"github.com/pkg/errors"
)

// maxDepth bounds composite nesting, catching modules that call themselves.
const maxDepth = 256

// TraceError reports that a module could not be traced.
type TraceError struct {
	Module string // path of the module being traced ("" for the root)
	Err    error
}

// Error implements the error interface.
func (e *TraceError) Error() string {
	name := e.Module
	if name == "" {
		name = "<root>"
	}
	return fmt.Sprintf("trace %s: %v", name, e.Err)
}

// Unwrap returns the underlying error.
func (e *TraceError) Unwrap() error {
	return e.Err
}

type config struct {
	registry   *ops.Registry
	inputNames []string
}

// TraceOption configures Trace.
type TraceOption func(*config)

// WithRegistry sets the function ops a traced module may apply.
// Defaults to ops.Default().
func WithRegistry(r *ops.Registry) TraceOption {
	return func(c *config) {
		c.registry = r
	}
}

// WithInputNames sets the names (and number) of graph inputs. Defaults to a
// single input named "x".
func WithInputNames(names ...string) TraceOption {
	return func(c *config) {
		c.inputNames = names
	}
}

// Trace records the forward computation of root using t.
//
// The returned graph starts with one placeholder per input and ends with an
// output node. Any failure is returned as a *TraceError.
func Trace(root nn.Module, t Tracer, opts ...TraceOption) (*graph.Graph, error) {
	cfg := config{registry: ops.Default(), inputNames: []string{"x"}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if t == nil {
		return nil, &TraceError{Err: errors.New("nil tracer")}
	}

	ix, err := naming.Build(root)
	if err != nil {
		return nil, &TraceError{Err: err}
	}

	b := &builder{
		g:        graph.New(),
		ix:       ix,
		tracer:   t,
		registry: cfg.registry,
	}

	inputs := make([]*graph.Node, len(cfg.inputNames))
	for i, name := range cfg.inputNames {
		n, err := b.g.Add(graph.Placeholder, name, name)
		if err != nil {
			return nil, &TraceError{Err: err}
		}
		t.RecordNode(n, "")
		inputs[i] = n
	}

	out, err := b.callModule(root, "", inputs)
	if err != nil {
		return nil, err
	}

	n, err := b.g.Add(graph.Output, "output", "output", out)
	if err != nil {
		return nil, &TraceError{Err: err}
	}
	t.RecordNode(n, "")

	return b.g, nil
}

// builder implements nn.Builder on top of a graph under construction.
type builder struct {
	g        *graph.Graph
	ix       *naming.Index
	tracer   Tracer
	registry *ops.Registry
	scope    []string
}

func (b *builder) currentScope() string {
	if len(b.scope) == 0 {
		return ""
	}
	return b.scope[len(b.scope)-1]
}

// Call implements nn.Builder.
func (b *builder) Call(m nn.Module, args ...*graph.Node) (*graph.Node, error) {
	path, ok := b.ix.PathOf(m)
	if !ok {
		var err error
		if path, err = b.childPath(m); err != nil {
			return nil, &TraceError{Module: b.currentScope(), Err: err}
		}
	}
	return b.callModule(m, path, args)
}

// childPath finds m among the direct children of the module being traced.
// It serves modules the index cannot look up by identity.
func (b *builder) childPath(m nn.Module) (string, error) {
	scope := b.currentScope()
	parent, ok := b.ix.Module(scope)
	if !ok || m == nil || reflect.TypeOf(m).Kind() != reflect.Ptr {
		return "", errors.Errorf("called module %T is not part of the traced model", m)
	}
	var paths []string
	for _, c := range parent.Children() {
		if c.Module == nil || reflect.TypeOf(c.Module).Kind() != reflect.Ptr {
			continue
		}
		if c.Module == m {
			paths = append(paths, childName(scope, c.Name))
		}
	}
	switch len(paths) {
	case 0:
		return "", errors.Errorf("called module %T is not part of the traced model", m)
	case 1:
		return paths[0], nil
	default:
		return "", errors.Errorf("called module %T is ambiguous between %v", m, paths)
	}
}

func (b *builder) callModule(m nn.Module, path string, args []*graph.Node) (*graph.Node, error) {
	for i, a := range args {
		if a == nil {
			return nil, &TraceError{Module: path, Err: errors.Errorf("input %d is nil", i)}
		}
	}

	if path != "" && b.tracer.IsLeafModule(m, path) {
		if _, ok := m.(nn.Leaf); !ok {
			return nil, &TraceError{Module: path, Err: errors.Errorf("leaf module %T has no Forward", m)}
		}
		n, err := b.g.Add(graph.CallModule, path, path, nodesToArgs(args)...)
		if err != nil {
			return nil, &TraceError{Module: path, Err: err}
		}
		b.tracer.RecordNode(n, b.currentScope())
		return n, nil
	}

	c, ok := m.(nn.Composite)
	if !ok {
		if leaf, isLeaf := m.(nn.Leaf); isLeaf && path == "" {
			return b.callRootLeaf(leaf, args)
		}
		return nil, &TraceError{Module: path, Err: errors.Errorf("module %T is neither a leaf nor traceable", m)}
	}
	if len(b.scope) >= maxDepth {
		return nil, &TraceError{Module: path, Err: errors.Errorf("module nesting exceeds %d levels", maxDepth)}
	}

	b.scope = append(b.scope, path)
	out, err := c.Trace(b, args...)
	b.scope = b.scope[:len(b.scope)-1]

	if err != nil {
		var te *TraceError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &TraceError{Module: path, Err: err}
	}
	if out == nil {
		return nil, &TraceError{Module: path, Err: errors.New("trace returned no output")}
	}
	return out, nil
}

// callRootLeaf records a root module that is itself a leaf. The node has
// the root's empty name, so it is never attributed to a named layer.
func (b *builder) callRootLeaf(_ nn.Leaf, args []*graph.Node) (*graph.Node, error) {
	n, err := b.g.Add(graph.CallModule, "", "self", nodesToArgs(args)...)
	if err != nil {
		return nil, &TraceError{Err: err}
	}
	b.tracer.RecordNode(n, "")
	return n, nil
}

// Apply implements nn.Builder.
func (b *builder) Apply(fn string, args ...any) (*graph.Node, error) {
	scope := b.currentScope()
	if !b.registry.Has(fn) {
		return nil, &TraceError{Module: scope, Err: errors.Errorf("unsupported function op %q", fn)}
	}
	for i, a := range args {
		if n, ok := a.(*graph.Node); ok && n == nil {
			return nil, &TraceError{Module: scope, Err: errors.Errorf("%s: argument %d is a nil node", fn, i)}
		}
	}
	n, err := b.g.Add(graph.CallFunction, fn, fn, args...)
	if err != nil {
		return nil, &TraceError{Module: scope, Err: err}
	}
	b.tracer.RecordNode(n, scope)
	return n, nil
}

// Attr implements nn.Builder.
func (b *builder) Attr(p *nn.Parameter) (*graph.Node, error) {
	scope := b.currentScope()
	path, ok := b.ix.ParameterPath(p)
	if !ok {
		return nil, &TraceError{Module: scope, Err: errors.New("parameter is not owned by a module of the traced model")}
	}
	n, err := b.g.Add(graph.GetAttr, path, path)
	if err != nil {
		return nil, &TraceError{Module: scope, Err: err}
	}
	b.tracer.RecordNode(n, scope)
	return n, nil
}

func childName(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func nodesToArgs(nodes []*graph.Node) []any {
	args := make([]any, len(nodes))
	for i, n := range nodes {
		args[i] = n
	}
	return args
}
