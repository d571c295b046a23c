// Package tracer records the forward computation of a module as a graph.
//
// Tracing walks the module tree: leaf modules become single call_module
// nodes, composite modules are traced through, and the free function ops
// they apply become call_function nodes. A Tracer decides which modules are
// leaves and remembers which module produced each node.
package tracer

import (
	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/nn"
)

// Tracer is the pluggable strategy consulted while tracing.
type Tracer interface {
	// IsLeafModule reports whether m, registered under qualifiedName, is
	// recorded as one call_module node instead of being traced through.
	IsLeafModule(m nn.Module, qualifiedName string) bool

	// RecordNode is called for every node right after it is created.
	// scope is the path of the module whose forward computation is being
	// traced ("" for the root).
	RecordNode(n *graph.Node, scope string)

	// ModuleNameOf returns the dotted name of the module that produced n.
	ModuleNameOf(n *graph.Node) (string, bool)
}

// ModuleNodeTracer is the default Tracer.
//
// Modules implementing nn.Leaf are leaves. Owner names are kept in node
// metadata: a call_module node is owned by the module it calls, and a
// call_function node by the module whose forward computation applied it.
// Placeholder, get_attr and output nodes have no owner.
type ModuleNodeTracer struct {
	isLeaf func(m nn.Module, qualifiedName string) bool
}

// Option configures a ModuleNodeTracer.
type Option func(*ModuleNodeTracer)

// WithLeafFunc overrides which modules are treated as leaves.
func WithLeafFunc(fn func(m nn.Module, qualifiedName string) bool) Option {
	return func(t *ModuleNodeTracer) {
		t.isLeaf = fn
	}
}

// NewModuleNodeTracer creates the default tracer.
func NewModuleNodeTracer(opts ...Option) *ModuleNodeTracer {
	t := &ModuleNodeTracer{isLeaf: defaultIsLeaf}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func defaultIsLeaf(m nn.Module, _ string) bool {
	_, ok := m.(nn.Leaf)
	return ok
}

// IsLeafModule implements Tracer.
func (t *ModuleNodeTracer) IsLeafModule(m nn.Module, qualifiedName string) bool {
	return t.isLeaf(m, qualifiedName)
}

// RecordNode implements Tracer.
func (t *ModuleNodeTracer) RecordNode(n *graph.Node, scope string) {
	switch n.Op {
	case graph.CallModule:
		n.Meta[graph.ModuleNameKey] = n.Target
	case graph.CallFunction:
		n.Meta[graph.ModuleNameKey] = scope
	}
}

// ModuleNameOf implements Tracer. The root scope has the empty name and
// reports false.
func (t *ModuleNodeTracer) ModuleNameOf(n *graph.Node) (string, bool) {
	if n == nil || n.Meta == nil {
		return "", false
	}
	name, ok := n.Meta[graph.ModuleNameKey].(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
