package tailor

import (
	"errors"
	"testing"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/internal/shapeprop"
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/born-ml/tailor/internal/tracer"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTracer counts every call made to the wrapped tracer.
type countingTracer struct {
	tracer.Tracer
	calls int
}

func (c *countingTracer) IsLeafModule(m nn.Module, name string) bool {
	c.calls++
	return c.Tracer.IsLeafModule(m, name)
}

func (c *countingTracer) RecordNode(n *graph.Node, scope string) {
	c.calls++
	c.Tracer.RecordNode(n, scope)
}

// sizer applies the non-tensor "size" op to its body's output.
type sizer struct {
	body nn.Module
}

func (s *sizer) Parameters() []*nn.Parameter { return nil }
func (s *sizer) Children() []nn.Child        { return []nn.Child{{Name: "body", Module: s.body}} }
func (s *sizer) Trace(b nn.Builder, inputs ...*graph.Node) (*graph.Node, error) {
	y, err := b.Call(s.body, inputs...)
	if err != nil {
		return nil, err
	}
	if _, err := b.Apply("size", y); err != nil {
		return nil, err
	}
	return y, nil
}

func fcModel() nn.Module {
	return nn.NewNamedSequential(nn.Child{Name: "fc", Module: nn.NewLinear(4, 2, true)})
}

func residualModel() nn.Module {
	return nn.NewNamedSequential(
		nn.Child{Name: "block", Module: nn.NewResidual(nn.NewLinear(4, 4, true), "relu")},
		nn.Child{Name: "scale", Module: nn.NewScale(4)},
	)
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestInterpretLinear(t *testing.T) {
	tl := must.M1(New(fcModel()))

	records, err := tl.Interpret([]int{1, 4}, true)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "fc", r.Name)
	assert.Equal(t, 10, r.NumParams)
	assert.True(t, r.Trainable)
	assert.Equal(t, "float32", r.DType())
	assert.Equal(t, "[1 2]", r.ShapeString())
	assert.Equal(t, StateDone, tl.State())
	require.NotNil(t, tl.ShapeInterpreter())
}

func TestInterpretInvalidShape(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
	}{
		{"nil", nil},
		{"empty", []int{}},
		{"zero dimension", []int{1, 0}},
		{"negative dimension", []int{-1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &countingTracer{Tracer: tracer.NewModuleNodeTracer()}
			inputs := 0
			tl := must.M1(New(fcModel(), WithTracer(probe), WithInput(func(s tensor.Shape) (*tensor.Tensor, error) {
				inputs++
				return ZeroInput(s)
			})))

			records, err := tl.Interpret(tt.shape, true)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, ErrInvalidShape)
			var se *ShapeError
			assert.ErrorAs(t, err, &se)

			assert.Zero(t, probe.calls, "nothing may be traced")
			assert.Zero(t, inputs)
			assert.Equal(t, StateIdle, tl.State())
		})
	}
}

func TestInterpretSkipCallFunction(t *testing.T) {
	tl := must.M1(New(residualModel()))

	all, err := tl.Interpret([]int{2, 4}, false)
	require.NoError(t, err)
	skipped, err := tl.Interpret([]int{2, 4}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"block.body", "block", "block", "scale"}, names(all))
	assert.Equal(t, []string{"block.body"}, names(skipped))
	assert.Empty(t, cmp.Diff(all[0], skipped[0]))

	// Function nodes report their enclosing module.
	assert.Equal(t, 20, all[1].NumParams)
	assert.False(t, all[1].Trainable, "residual owns no parameter directly")
	assert.Equal(t, 4, all[3].NumParams)
	assert.True(t, all[3].Trainable)
	assert.Equal(t, "[2 4]", all[3].ShapeString())
}

func TestInterpretUnresolvedMetadata(t *testing.T) {
	model := nn.NewNamedSequential(nn.Child{Name: "probe", Module: &sizer{body: nn.NewLinear(3, 3, false)}})
	tl := must.M1(New(model))

	records, err := tl.Interpret([]int{1, 3}, false)
	require.NoError(t, err)
	require.Equal(t, []string{"probe.body", "probe"}, names(records))

	assert.Equal(t, "[1 3]", records[0].ShapeString())
	assert.Equal(t, Unknown, records[1].DType())
	assert.Equal(t, Unknown, records[1].ShapeString())
	assert.Equal(t, graph.Unresolved{}, records[1].Tensor)
	assert.Equal(t, 9, records[1].NumParams)
}

func TestInterpretParameterFree(t *testing.T) {
	model := nn.NewNamedSequential(
		nn.Child{Name: "act", Module: nn.NewReLU()},
		nn.Child{Name: "flat", Module: nn.NewFlatten()},
	)
	tl := must.M1(New(model))

	records, err := tl.Interpret([]int{2, 3, 4}, true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Zero(t, r.NumParams, r.Name)
		assert.False(t, r.Trainable, r.Name)
	}
	assert.Equal(t, "[2 12]", records[1].ShapeString())
}

func TestInterpretIdempotent(t *testing.T) {
	tl := must.M1(New(residualModel()))

	first, err := tl.Interpret([]int{3, 4}, false)
	require.NoError(t, err)
	p1 := tl.ShapeInterpreter()

	second, err := tl.Interpret([]int{3, 4}, false)
	require.NoError(t, err)
	p2 := tl.ShapeInterpreter()

	assert.Empty(t, cmp.Diff(first, second))
	assert.NotSame(t, p1, p2, "the last call's interpreter is retained")
	assert.NotSame(t, p1.Graph(), p2.Graph(), "every call traces a fresh graph")
}

func TestInterpretMapAnnotations(t *testing.T) {
	byRecord := must.M1(New(residualModel(), WithInput(SeededInput(1))))
	model := byRecord.Model()
	byMap := must.M1(New(model, WithPropagator(func(g *graph.Graph, root nn.Module) (shapeprop.Propagator, error) {
		return shapeprop.New(g, root, shapeprop.WithMapAnnotations())
	})))

	want, err := byRecord.Interpret([]int{1, 4}, false)
	require.NoError(t, err)
	got, err := byMap.Interpret([]int{1, 4}, false)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestInterpretFrozen(t *testing.T) {
	model := fcModel()
	tl := must.M1(New(model))
	n, err := NewFreezer(tl).Freeze("fc")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := tl.Interpret([]int{1, 4}, true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].NumParams)
	assert.False(t, records[0].Trainable)
}

func TestInterpretTraceFailure(t *testing.T) {
	leafOnly := tracer.NewModuleNodeTracer(tracer.WithLeafFunc(func(nn.Module, string) bool { return false }))
	tl := must.M1(New(fcModel(), WithTracer(leafOnly)))

	records, err := tl.Interpret([]int{1, 4}, true)
	assert.Nil(t, records)
	var te *tracer.TraceError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fc", te.Module)
	assert.Equal(t, StateTracing, tl.State())
}

func TestInterpretPropagationFailure(t *testing.T) {
	model := nn.NewNamedSequential(
		nn.Child{Name: "fc1", Module: nn.NewLinear(4, 3, true)},
		nn.Child{Name: "fc2", Module: nn.NewLinear(4, 2, true)},
	)
	tl := must.M1(New(model))

	records, err := tl.Interpret([]int{1, 4}, true)
	assert.Nil(t, records)
	var pe *shapeprop.PropagationError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "fc2", pe.Target)
	assert.Nil(t, tl.ShapeInterpreter(), "a failed graph is discarded")
	assert.Equal(t, StateShapePropagating, tl.State())
}

func TestInterpretInputFailure(t *testing.T) {
	boom := errors.New("boom")
	tl := must.M1(New(fcModel(), WithInput(func(tensor.Shape) (*tensor.Tensor, error) {
		return nil, boom
	})))
	_, err := tl.Interpret([]int{1, 4}, true)
	assert.ErrorIs(t, err, boom)
}

func TestTrace(t *testing.T) {
	tl := must.M1(New(fcModel()))
	g1, err := tl.Trace()
	require.NoError(t, err)
	g2, err := tl.Trace()
	require.NoError(t, err)
	assert.NotSame(t, g1, g2)
	assert.Equal(t, g1.String(), g2.String())
	assert.Equal(t, StateIdle, tl.State())
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilModel)

	model := fcModel()
	tl := must.M1(New(model))
	assert.Same(t, model, tl.Model())
	assert.Nil(t, tl.ShapeInterpreter())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "shape-propagating", StateShapePropagating.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestInterpretRepeatedActivations(t *testing.T) {
	model := nn.NewSequential(nn.NewLinear(4, 4, true), nn.NewReLU(), nn.NewLinear(4, 2, true), nn.NewReLU())
	tl := must.M1(New(model))

	records, err := tl.Interpret([]int{1, 4}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3"}, names(records))
	assert.Equal(t, "[1 2]", records[3].ShapeString())

	old, err := NewRewriter(tl).Replace("3", nn.NewIdentity())
	require.NoError(t, err)
	assert.IsType(t, &nn.ReLU{}, old)
}

func TestInterpretRecordsNameIndexedModules(t *testing.T) {
	models := map[string]nn.Module{
		"mlp": nn.NewNamedSequential(
			nn.Child{Name: "features", Module: nn.NewSequential(
				nn.NewLinear(4, 8, true), nn.NewReLU(), nn.NewLinear(8, 8, true), nn.NewReLU(),
			)},
			nn.Child{Name: "head", Module: nn.NewSequential(nn.NewLinear(8, 3, true), nn.NewTanh(), nn.NewSoftmax())},
		),
		"residual": nn.NewSequential(
			nn.NewResidual(nn.NewLinear(4, 4, true), "relu"),
			nn.NewResidual(nn.NewLinear(4, 4, true), "relu"),
			nn.NewScale(4),
		),
	}
	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			tl := must.M1(New(model))
			g := must.M1(tl.Trace())
			ix := must.M1(naming.Build(model))

			for _, skip := range []bool{true, false} {
				records, err := tl.Interpret([]int{2, 4}, skip)
				require.NoError(t, err)
				require.NotEmpty(t, records)
				assert.LessOrEqual(t, len(records), g.Len())
				for _, r := range records {
					assert.Contains(t, ix.Names(), r.Name)
					assert.NotEmpty(t, r.Name)
				}
			}
		})
	}
}
