// Package naming indexes a module hierarchy by dotted path.
//
// The root module is registered under the empty name; every descendant under
// the dot-joined names of the children leading to it ("features.0.conv").
// A module reachable through several paths is registered once, under the
// first path met in pre-order. Sharing is recognized for pointer modules only;
// value modules and pointers to zero-size types are registered at every path.
package naming

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/born-ml/tailor/internal/nn"
)

// Common errors.
var (
	ErrNilModule     = errors.New("naming: nil root module")
	ErrDuplicateName = errors.New("naming: duplicate module path")
	ErrInvalidName   = errors.New("naming: invalid child name")
)

// Index maps dotted module paths to modules and their primary parameters.
type Index struct {
	names   []string
	modules map[string]nn.Module
	paths   map[any]string
	primary map[string]*nn.Parameter

	paramPaths map[*nn.Parameter]string
	params     map[string]*nn.Parameter
}

// Build traverses root once and indexes every module in it.
func Build(root nn.Module) (*Index, error) {
	if isNil(root) {
		return nil, ErrNilModule
	}
	ix := &Index{
		modules:    make(map[string]nn.Module),
		paths:      make(map[any]string),
		primary:    make(map[string]*nn.Parameter),
		paramPaths: make(map[*nn.Parameter]string),
		params:     make(map[string]*nn.Parameter),
	}
	if err := ix.visit("", root); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) visit(path string, m nn.Module) error {
	if key, ok := identity(m); ok {
		if _, seen := ix.paths[key]; seen {
			return nil
		}
		ix.paths[key] = path
	}
	if _, taken := ix.modules[path]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateName, path)
	}

	ix.names = append(ix.names, path)
	ix.modules[path] = m

	for _, p := range m.Parameters() {
		if p == nil {
			continue
		}
		if _, ok := ix.primary[path]; !ok {
			ix.primary[path] = p
		}
		if _, ok := ix.paramPaths[p]; !ok {
			qualified := join(path, p.Name())
			ix.paramPaths[p] = qualified
			ix.params[qualified] = p
		}
	}

	for _, c := range m.Children() {
		if isNil(c.Module) {
			continue
		}
		if c.Name == "" || strings.Contains(c.Name, ".") {
			return fmt.Errorf("%w: %q under %q", ErrInvalidName, c.Name, path)
		}
		if err := ix.visit(join(path, c.Name), c.Module); err != nil {
			return err
		}
	}
	return nil
}

// Names returns every module path in traversal order, the root ("") first.
func (ix *Index) Names() []string {
	return append([]string(nil), ix.names...)
}

// Len returns the number of indexed modules, including the root.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Modules returns a copy of the path-to-module mapping.
func (ix *Index) Modules() map[string]nn.Module {
	out := make(map[string]nn.Module, len(ix.modules))
	for k, v := range ix.modules {
		out[k] = v
	}
	return out
}

// Module returns the module registered under name.
func (ix *Index) Module(name string) (nn.Module, bool) {
	m, ok := ix.modules[name]
	return m, ok
}

// Parameter returns the primary parameter of the module registered under
// name: the first parameter it owns directly (a layer's weight).
func (ix *Index) Parameter(name string) (*nn.Parameter, bool) {
	p, ok := ix.primary[name]
	return p, ok
}

// Parameters returns a copy of the path-to-primary-parameter mapping.
func (ix *Index) Parameters() map[string]*nn.Parameter {
	out := make(map[string]*nn.Parameter, len(ix.primary))
	for k, v := range ix.primary {
		out[k] = v
	}
	return out
}

// PathOf returns the path under which m is registered.
func (ix *Index) PathOf(m nn.Module) (string, bool) {
	key, ok := identity(m)
	if !ok {
		return "", false
	}
	path, ok := ix.paths[key]
	return path, ok
}

// ParameterPath returns the qualified path of p ("fc.weight").
func (ix *Index) ParameterPath(p *nn.Parameter) (string, bool) {
	path, ok := ix.paramPaths[p]
	return path, ok
}

// ParameterAt returns the parameter registered under a qualified path.
func (ix *Index) ParameterAt(path string) (*nn.Parameter, bool) {
	p, ok := ix.params[path]
	return p, ok
}

// CountParameters returns the number of scalar elements in the parameters of
// m and all its descendants. Each distinct parameter is counted once.
func CountParameters(m nn.Module) int {
	if isNil(m) {
		return 0
	}
	seenParams := make(map[*nn.Parameter]struct{})
	seenModules := make(map[any]struct{})

	var total int
	var walk func(nn.Module)
	walk = func(m nn.Module) {
		if key, ok := identity(m); ok {
			if _, seen := seenModules[key]; seen {
				return
			}
			seenModules[key] = struct{}{}
		}
		for _, p := range m.Parameters() {
			if p == nil {
				continue
			}
			if _, seen := seenParams[p]; seen {
				continue
			}
			seenParams[p] = struct{}{}
			total += p.NumElements()
		}
		for _, c := range m.Children() {
			if !isNil(c.Module) {
				walk(c.Module)
			}
		}
	}
	walk(m)
	return total
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// identity returns a map key standing for m's identity. Only pointers to
// values of non-zero size have one: distinct zero-size allocations may share
// an address, and value types cannot be shared at all.
func identity(m nn.Module) (any, bool) {
	t := reflect.TypeOf(m)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Size() == 0 {
		return nil, false
	}
	return m, true
}

func isNil(m nn.Module) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
