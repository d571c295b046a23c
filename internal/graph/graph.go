// Package graph holds the static computation graph produced by tracing a module.
//
// A Graph is an ordered list of nodes. Node order is execution order: every
// node's arguments appear before it, so interpreters walk Nodes() front to back.
package graph

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Op identifies what a node does.
type Op int

// Node operation kinds.
const (
	Placeholder  Op = iota // graph input
	GetAttr                // read a parameter of a module
	CallModule             // invoke a leaf module
	CallFunction           // invoke a free function op
	Output                 // graph result
)

// String returns the conventional lowercase name of the op kind.
func (o Op) String() string {
	switch o {
	case Placeholder:
		return "placeholder"
	case GetAttr:
		return "get_attr"
	case CallModule:
		return "call_module"
	case CallFunction:
		return "call_function"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Node is one entry of a Graph.
//
// Args holds either *Node references to earlier nodes or constant values
// (ints, []int, float64, strings, dtypes) interpreted by the op.
type Node struct {
	Name   string
	Op     Op
	Target string
	Args   []any
	Meta   map[string]any
}

// Inputs returns the *Node arguments of n in order.
func (n *Node) Inputs() []*Node {
	var inputs []*Node
	for _, a := range n.Args {
		if in, ok := a.(*Node); ok {
			inputs = append(inputs, in)
		}
	}
	return inputs
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return "%" + n.Name
}

// Graph is an ordered computation graph.
type Graph struct {
	nodes []*Node
	names map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{names: make(map[string]int)}
}

// Nodes returns the nodes in execution order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given name, or nil.
func (g *Graph) Node(name string) *Node {
	for _, n := range g.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Add appends a node. The node name is derived from hint and made unique
// within the graph ("fc", "fc_1", ...). Arguments must already be in g.
func (g *Graph) Add(op Op, target, hint string, args ...any) (*Node, error) {
	for i, a := range args {
		in, ok := a.(*Node)
		if !ok {
			continue
		}
		if !g.contains(in) {
			return nil, fmt.Errorf("argument %d (%s) of %s node %q is not part of this graph", i, in, op, target)
		}
	}
	if op == Output && len(g.nodes) > 0 && g.nodes[len(g.nodes)-1].Op == Output {
		return nil, fmt.Errorf("graph already has an output node")
	}

	n := &Node{
		Name:   g.uniqueName(hint),
		Op:     op,
		Target: target,
		Args:   args,
		Meta:   make(map[string]any),
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// Output returns the output node, or nil if the graph has none yet.
func (g *Graph) Output() *Node {
	if len(g.nodes) == 0 {
		return nil
	}
	if last := g.nodes[len(g.nodes)-1]; last.Op == Output {
		return last
	}
	return nil
}

func (g *Graph) contains(n *Node) bool {
	idx, ok := g.names[n.Name]
	return ok && g.nodes[idx] == n
}

func (g *Graph) uniqueName(hint string) string {
	base := sanitize(hint)
	name := base
	for i := 1; ; i++ {
		if _, taken := g.names[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
	g.names[name] = len(g.nodes)
	return name
}

func sanitize(hint string) string {
	if hint == "" {
		return "node"
	}
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(hint)
}

// WriteTabular prints the graph as a table of opcode, name, target and args.
func (g *Graph) WriteTabular(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "opcode\tname\ttarget\targs")
	for _, n := range g.nodes {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = fmt.Sprint(a)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t(%s)\n", n.Op, n.Name, n.Target, strings.Join(args, ", "))
	}
	return tw.Flush()
}

// String implements fmt.Stringer.
func (g *Graph) String() string {
	var sb strings.Builder
	_ = g.WriteTabular(&sb)
	return sb.String()
}
