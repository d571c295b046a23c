// Package ops provides the free function ops a traced graph can invoke.
//
// A call_function node names an op registered here; the tracer rejects
// unknown names and the shape interpreter executes them on concrete values.
package ops

import (
	"sort"

	"github.com/pkg/errors"
)

// Func executes an op. Arguments are resolved values: *tensor.Tensor for
// graph inputs, or the constants recorded at trace time. The result may be a
// tensor or any other value (e.g. a shape).
type Func func(args []any) (any, error)

// Registry maps op names to implementations.
type Registry struct {
	handlers map[string]Func
}

// NewRegistry creates a registry with all built-in ops.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]Func),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerShapeOps()

	return r
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry of built-in ops.
func Default() *Registry {
	return defaultRegistry
}

// Register adds or replaces an op.
func (r *Registry) Register(name string, fn Func) {
	r.handlers[name] = fn
}

// Has reports whether an op is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Execute runs an op with the given arguments.
func (r *Registry) Execute(name string, args []any) (any, error) {
	fn, ok := r.handlers[name]
	if !ok {
		return nil, errors.Errorf("unsupported op: %s", name)
	}
	return fn(args)
}

// Names returns the registered op names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
