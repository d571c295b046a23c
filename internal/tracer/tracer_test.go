package tracer

import (
	"errors"
	"testing"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/internal/ops"
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// custom is a composite whose forward computation is given by a closure.
type custom struct {
	children []nn.Child
	params   []*nn.Parameter
	trace    func(b nn.Builder, x *graph.Node) (*graph.Node, error)
}

func (c *custom) Parameters() []*nn.Parameter { return c.params }
func (c *custom) Children() []nn.Child        { return c.children }
func (c *custom) Trace(b nn.Builder, inputs ...*graph.Node) (*graph.Node, error) {
	return c.trace(b, inputs[0])
}

// opaque is neither a leaf nor a composite.
type opaque struct{}

func (opaque) Parameters() []*nn.Parameter { return nil }
func (opaque) Children() []nn.Child        { return nil }

// stamp is a zero-size leaf.
type stamp struct{}

func (*stamp) Parameters() []*nn.Parameter { return nil }
func (*stamp) Children() []nn.Child        { return nil }
func (*stamp) Forward(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	return inputs[0], nil
}

func opTargets(g *graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes() {
		out = append(out, n.Op.String()+":"+n.Target)
	}
	return out
}

func TestTraceSequential(t *testing.T) {
	model := nn.NewNamedSequential(
		nn.Child{Name: "features", Module: nn.NewSequential(nn.NewLinear(4, 3, true), nn.NewReLU())},
		nn.Child{Name: "head", Module: nn.NewLinear(3, 2, true)},
	)

	tr := NewModuleNodeTracer()
	g, err := Trace(model, tr)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"placeholder:x",
		"call_module:features.0",
		"call_module:features.1",
		"call_module:head",
		"output:output",
	}, opTargets(g))

	name, ok := tr.ModuleNameOf(g.Nodes()[1])
	require.True(t, ok)
	assert.Equal(t, "features.0", name)

	_, ok = tr.ModuleNameOf(g.Nodes()[0])
	assert.False(t, ok, "placeholders have no owner")
	_, ok = tr.ModuleNameOf(g.Output())
	assert.False(t, ok, "output has no owner")
}

func TestTraceFunctionOwnership(t *testing.T) {
	scale := nn.NewScale(4)
	block := nn.NewResidual(nn.NewLinear(4, 4, true), "relu")
	model := nn.NewNamedSequential(
		nn.Child{Name: "block", Module: block},
		nn.Child{Name: "scale", Module: scale},
	)

	tr := NewModuleNodeTracer()
	g, err := Trace(model, tr)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"placeholder:x",
		"call_module:block.body",
		"call_function:add",
		"call_function:relu",
		"get_attr:scale.weight",
		"call_function:mul",
		"output:output",
	}, opTargets(g))

	owners := make([]string, 0, g.Len())
	for _, n := range g.Nodes() {
		name, _ := tr.ModuleNameOf(n)
		owners = append(owners, name)
	}
	assert.Equal(t, []string{"", "block.body", "block", "block", "", "scale", ""}, owners)
}

func TestTraceRootFunctionsHaveNoOwner(t *testing.T) {
	model := &custom{trace: func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
		return b.Apply("flatten", x, 1)
	}}
	tr := NewModuleNodeTracer()
	g, err := Trace(model, tr)
	require.NoError(t, err)

	n := g.Nodes()[1]
	assert.Equal(t, graph.CallFunction, n.Op)
	assert.Equal(t, []any{g.Nodes()[0], 1}, n.Args)
	_, ok := tr.ModuleNameOf(n)
	assert.False(t, ok)
}

func TestTraceLeafFunc(t *testing.T) {
	inner := nn.NewSequential(nn.NewLinear(2, 2, true), nn.NewReLU())
	model := nn.NewNamedSequential(nn.Child{Name: "inner", Module: inner})

	// Only Linear layers are leaves: ReLU cannot be traced through.
	tr := NewModuleNodeTracer(WithLeafFunc(func(m nn.Module, _ string) bool {
		_, ok := m.(*nn.Linear)
		return ok
	}))
	_, err := Trace(model, tr)
	var te *TraceError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "inner.1", te.Module)
}

func TestTraceRootLeaf(t *testing.T) {
	tr := NewModuleNodeTracer()
	g, err := Trace(nn.NewLinear(4, 2, true), tr)
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())
	_, ok := tr.ModuleNameOf(g.Nodes()[1])
	assert.False(t, ok)
}

func TestTraceMultipleInputs(t *testing.T) {
	model := &custom{}
	model.trace = func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
		return x, nil
	}
	g, err := Trace(model, NewModuleNodeTracer(), WithInputNames("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "a", g.Nodes()[0].Name)
	assert.Equal(t, "b", g.Nodes()[1].Name)
}

func TestTraceFailures(t *testing.T) {
	stranger := nn.NewLinear(2, 2, true)
	boom := errors.New("boom")

	tests := []struct {
		name   string
		model  nn.Module
		module string
	}{
		{"unknown function", &custom{trace: func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
			return b.Apply("conv3d", x)
		}}, ""},
		{"module outside the model", &custom{trace: func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
			return b.Call(stranger, x)
		}}, ""},
		{"foreign parameter", &custom{trace: func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
			return b.Attr(stranger.Weight())
		}}, ""},
		{"nil output", &custom{trace: func(nn.Builder, *graph.Node) (*graph.Node, error) {
			return nil, nil
		}}, ""},
		{"plain error", &custom{trace: func(nn.Builder, *graph.Node) (*graph.Node, error) {
			return nil, boom
		}}, ""},
		{"opaque child", nn.NewNamedSequential(nn.Child{Name: "odd", Module: opaque{}}), "odd"},
		{"nil root", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Trace(tt.model, NewModuleNodeTracer())
			assert.Nil(t, g)
			var te *TraceError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.module, te.Module)
		})
	}
}

func TestTraceSelfReference(t *testing.T) {
	loop := &custom{}
	loop.children = []nn.Child{{Name: "self", Module: nn.NewReLU()}}
	loop.trace = func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
		return b.Call(loop, x)
	}
	_, err := Trace(loop, NewModuleNodeTracer())
	assert.ErrorContains(t, err, "nesting")
}

func TestTraceCustomRegistry(t *testing.T) {
	r := ops.NewRegistry()
	r.Register("gelu", func(args []any) (any, error) { return args[0], nil })

	model := &custom{trace: func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
		return b.Apply("gelu", x)
	}}
	_, err := Trace(model, NewModuleNodeTracer())
	assert.Error(t, err)

	g, err := Trace(model, NewModuleNodeTracer(), WithRegistry(r))
	require.NoError(t, err)
	assert.Equal(t, "gelu", g.Nodes()[1].Target)
}

func TestTraceRepeatedActivations(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(4, 4, true), nn.NewReLU(), nn.NewLinear(4, 2, true), nn.NewReLU())

	tr := NewModuleNodeTracer()
	g, err := Trace(model, tr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"placeholder:x",
		"call_module:0",
		"call_module:1",
		"call_module:2",
		"call_module:3",
		"output:output",
	}, opTargets(g))

	name, ok := tr.ModuleNameOf(g.Nodes()[4])
	require.True(t, ok)
	assert.Equal(t, "3", name)
}

func TestTraceZeroSizeChild(t *testing.T) {
	s := &stamp{}
	call := func(b nn.Builder, x *graph.Node) (*graph.Node, error) {
		return b.Call(s, x)
	}

	model := &custom{children: []nn.Child{{Name: "s", Module: s}}, trace: call}
	g, err := Trace(model, NewModuleNodeTracer())
	require.NoError(t, err)
	assert.Equal(t, "call_module:s", opTargets(g)[1])

	twice := &custom{children: []nn.Child{{Name: "a", Module: s}, {Name: "b", Module: s}}, trace: call}
	_, err = Trace(twice, NewModuleNodeTracer())
	var te *TraceError
	require.ErrorAs(t, err, &te)
	assert.ErrorContains(t, err, "ambiguous")
}
