package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/tailor/internal/graph"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. Children are named
// by position ("0", "1", ...) unless created with NewNamedSequential.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, true),
//	    nn.NewReLU(),
//	    nn.NewLinear(128, 10, true),
//	)
type Sequential struct {
	noParameters

	children []Child
}

// NewSequential creates a new Sequential container with positional names.
func NewSequential(modules ...Module) *Sequential {
	s := &Sequential{}
	for _, m := range modules {
		s.Add(m)
	}
	return s
}

// NewNamedSequential creates a Sequential container with explicit child names.
//
// Panics if a name is empty, contains a dot, or is used twice.
func NewNamedSequential(children ...Child) *Sequential {
	s := &Sequential{}
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if err := validChildName(c.Name); err != nil {
			panic(fmt.Sprintf("sequential: %v", err))
		}
		if seen[c.Name] {
			panic(fmt.Sprintf("sequential: duplicate child name %q", c.Name))
		}
		seen[c.Name] = true
		s.children = append(s.children, c)
	}
	return s
}

// Add appends a module named by its position.
func (s *Sequential) Add(m Module) {
	s.children = append(s.children, Child{Name: strconv.Itoa(len(s.children)), Module: m})
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.children)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.children) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.children[index].Module
}

// Children returns the chained modules in order.
func (s *Sequential) Children() []Child {
	return s.children
}

// SetChild replaces the module registered under name.
func (s *Sequential) SetChild(name string, m Module) error {
	if m == nil {
		return fmt.Errorf("sequential: nil replacement for %q", name)
	}
	for i := range s.children {
		if s.children[i].Name == name {
			s.children[i].Module = m
			return nil
		}
	}
	return fmt.Errorf("sequential: no child named %q", name)
}

// Trace records each module call in sequence.
func (s *Sequential) Trace(b Builder, inputs ...*graph.Node) (*graph.Node, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("sequential: expected exactly one input, got %d", len(inputs))
	}
	output := inputs[0]
	for _, c := range s.children {
		next, err := b.Call(c.Module, output)
		if err != nil {
			return nil, err
		}
		output = next
	}
	return output, nil
}

func validChildName(name string) error {
	if name == "" {
		return fmt.Errorf("empty child name")
	}
	for _, r := range name {
		if r == '.' {
			return fmt.Errorf("child name %q contains a dot", name)
		}
	}
	return nil
}
