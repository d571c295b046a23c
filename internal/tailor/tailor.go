// Package tailor joins a module's traced computation graph with its naming
// index and the shapes found by shape propagation, producing one Record per
// node owned by a named module.
//
// The same Tailor backs the visualizer, freezer and rewriter, which hold it
// by delegation.
package tailor

import (
	"log/slog"

	"github.com/born-ml/tailor/internal/graph"
	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/born-ml/tailor/internal/ops"
	"github.com/born-ml/tailor/internal/shapeprop"
	"github.com/born-ml/tailor/internal/tensor"
	"github.com/born-ml/tailor/internal/tracer"
)

// State is the stage an Interpret call last reached.
type State int

// Interpret moves through these states in order.
const (
	StateIdle State = iota
	StateTracing
	StateShapePropagating
	StateJoining
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracing:
		return "tracing"
	case StateShapePropagating:
		return "shape-propagating"
	case StateJoining:
		return "joining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// PropagatorFunc creates the shape propagation engine for a freshly traced
// graph of root.
type PropagatorFunc func(g *graph.Graph, root nn.Module) (shapeprop.Propagator, error)

// Option configures a Tailor.
type Option func(*Tailor)

// WithTracer sets the tracing strategy. Defaults to
// tracer.NewModuleNodeTracer().
func WithTracer(t tracer.Tracer) Option {
	return func(tl *Tailor) {
		tl.tracer = t
	}
}

// WithPropagator sets the shape propagation engine. Defaults to a
// shapeprop.Interpreter sharing the Tailor's op registry.
func WithPropagator(fn PropagatorFunc) Option {
	return func(tl *Tailor) {
		tl.newPropagator = fn
	}
}

// WithInput sets how probe inputs are generated. Defaults to RandomInput.
func WithInput(fn InputFunc) Option {
	return func(tl *Tailor) {
		tl.input = fn
	}
}

// WithRegistry sets the function ops available to traced modules.
func WithRegistry(r *ops.Registry) Option {
	return func(tl *Tailor) {
		tl.registry = r
	}
}

// WithLogger sets the logger. Defaults to discarding all output.
func WithLogger(l *slog.Logger) Option {
	return func(tl *Tailor) {
		tl.logger = l
	}
}

// Tailor inspects one root module.
//
// A Tailor is not safe for concurrent use: calls on one instance must be
// serialized by the caller.
type Tailor struct {
	model         nn.Module
	tracer        tracer.Tracer
	newPropagator PropagatorFunc
	input         InputFunc
	registry      *ops.Registry
	logger        *slog.Logger

	state  State
	interp shapeprop.Propagator
}

// New creates a Tailor for model.
func New(model nn.Module, opts ...Option) (*Tailor, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	tl := &Tailor{
		model:    model,
		tracer:   tracer.NewModuleNodeTracer(),
		input:    RandomInput,
		registry: ops.Default(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(tl)
	}
	if tl.newPropagator == nil {
		registry := tl.registry
		tl.newPropagator = func(g *graph.Graph, root nn.Module) (shapeprop.Propagator, error) {
			return shapeprop.New(g, root, shapeprop.WithRegistry(registry))
		}
	}
	return tl, nil
}

// Model returns the inspected root module.
func (tl *Tailor) Model() nn.Module {
	return tl.model
}

// State returns the stage the last Interpret call reached.
func (tl *Tailor) State() State {
	return tl.state
}

// ShapeInterpreter returns the propagator of the last successful Interpret
// call, or nil.
func (tl *Tailor) ShapeInterpreter() shapeprop.Propagator {
	return tl.interp
}

// Trace traces the model with the configured tracer and returns a fresh
// graph.
func (tl *Tailor) Trace() (*graph.Graph, error) {
	return tracer.Trace(tl.model, tl.tracer, tracer.WithRegistry(tl.registry))
}

// Interpret traces the model, propagates a probe input of inputShape through
// it and returns one Record per node owned by a named module, in graph
// order. call_function nodes are left out when skipCallFunction is true.
//
// An invalid shape fails with ErrInvalidShape before anything is traced.
// Trace and propagation failures are returned as they are; no records are
// returned with an error.
func (tl *Tailor) Interpret(inputShape []int, skipCallFunction bool) ([]Record, error) {
	if err := validateShape(inputShape); err != nil {
		return nil, err
	}
	shape := tensor.Shape(inputShape).Clone()
	log := tl.logger.With("input_shape", shape.String())

	tl.state = StateTracing
	ix, err := naming.Build(tl.model)
	if err != nil {
		return nil, err
	}
	x, err := tl.input(shape)
	if err != nil {
		return nil, err
	}
	g, err := tl.Trace()
	if err != nil {
		log.Debug("trace failed", "error", err)
		return nil, err
	}
	log.Debug("traced", "nodes", g.Len(), "modules", ix.Len())

	tl.state = StateShapePropagating
	tl.interp = nil
	p, err := tl.newPropagator(g, tl.model)
	if err != nil {
		return nil, err
	}
	if _, err := p.Propagate(x); err != nil {
		log.Debug("shape propagation failed", "error", err)
		return nil, err
	}
	tl.interp = p

	tl.state = StateJoining
	records := tl.join(p.Graph(), ix, skipCallFunction)

	tl.state = StateDone
	log.Debug("interpreted", "records", len(records))
	return records, nil
}

func (tl *Tailor) join(g *graph.Graph, ix *naming.Index, skipCallFunction bool) []Record {
	counts := make(map[string]int)
	records := make([]Record, 0, g.Len())

	for _, n := range g.Nodes() {
		if skipCallFunction && n.Op == graph.CallFunction {
			continue
		}
		name, ok := tl.tracer.ModuleNameOf(n)
		if !ok {
			continue
		}
		m, ok := ix.Module(name)
		if !ok {
			continue
		}

		count, seen := counts[name]
		if !seen {
			count = naming.CountParameters(m)
			counts[name] = count
		}
		p, hasParam := ix.Parameter(name)

		records = append(records, Record{
			Name:      name,
			NumParams: count,
			Trainable: count > 0 && hasParam && p.RequiresGrad(),
			Tensor:    graph.ResolveTensorInfo(n),
		})
	}
	return records
}
