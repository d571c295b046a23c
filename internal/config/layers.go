package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/tailor/internal/nn"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

type leafBuilder func(a *attributes) (nn.Module, error)

var leafBuilders = map[string]leafBuilder{
	"linear": func(a *attributes) (nn.Module, error) {
		in, out := a.positive("in"), a.positive("out")
		bias := a.boolean("bias", true)
		if err := a.err(); err != nil {
			return nil, err
		}
		return nn.NewLinear(in, out, bias), nil
	},
	"conv2d": func(a *attributes) (nn.Module, error) {
		in, out := a.positive("in"), a.positive("out")
		kernel := a.positive("kernel")
		stride := a.integer("stride", 1)
		padding := a.integer("padding", 0)
		bias := a.boolean("bias", true)
		if err := a.err(); err != nil {
			return nil, err
		}
		if stride <= 0 || padding < 0 {
			return nil, fmt.Errorf("stride must be positive and padding non-negative")
		}
		return nn.NewConv2D(in, out, kernel, kernel, stride, padding, bias), nil
	},
	"maxpool2d": func(a *attributes) (nn.Module, error) {
		kernel := a.positive("kernel")
		stride := a.integer("stride", kernel)
		if err := a.err(); err != nil {
			return nil, err
		}
		if stride <= 0 {
			return nil, fmt.Errorf("stride must be positive")
		}
		return nn.NewMaxPool2D(kernel, stride), nil
	},
	"layernorm": func(a *attributes) (nn.Module, error) {
		size := a.positive("size")
		eps := a.number("eps", 1e-5)
		if err := a.err(); err != nil {
			return nil, err
		}
		return nn.NewLayerNorm(size, float32(eps)), nil
	},
	"flatten": func(a *attributes) (nn.Module, error) {
		f := nn.NewFlatten()
		f.StartDim = a.integer("start_dim", f.StartDim)
		if err := a.err(); err != nil {
			return nil, err
		}
		return f, nil
	},
	"dropout": func(a *attributes) (nn.Module, error) {
		p := a.number("p", 0.5)
		if err := a.err(); err != nil {
			return nil, err
		}
		if p < 0 || p >= 1 {
			return nil, fmt.Errorf("p must be in [0, 1), got %v", p)
		}
		return nn.NewDropout(p), nil
	},
	"scale": func(a *attributes) (nn.Module, error) {
		features := a.positive("features")
		if err := a.err(); err != nil {
			return nil, err
		}
		return nn.NewScale(features), nil
	},
	"relu":     noAttributes(func() nn.Module { return nn.NewReLU() }),
	"sigmoid":  noAttributes(func() nn.Module { return nn.NewSigmoid() }),
	"tanh":     noAttributes(func() nn.Module { return nn.NewTanh() }),
	"softmax":  noAttributes(func() nn.Module { return nn.NewSoftmax() }),
	"identity": noAttributes(func() nn.Module { return nn.NewIdentity() }),
	"half":     noAttributes(func() nn.Module { return nn.NewHalf() }),
}

func noAttributes(fn func() nn.Module) leafBuilder {
	return func(*attributes) (nn.Module, error) {
		return fn(), nil
	}
}

// LayerTypes returns every layer type a definition may use.
func LayerTypes() []string {
	types := []string{"sequential", "residual"}
	for t := range leafBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func buildLayer(lb *layerBlock) (nn.Module, error) {
	a, err := newAttributes(lb.Remain)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", lb.Name, err)
	}

	var m nn.Module
	switch lb.Type {
	case "sequential", "residual":
		m, err = buildContainer(lb.Type, lb.Name, a, lb.Layers)
	default:
		build, ok := leafBuilders[lb.Type]
		if !ok {
			return nil, fmt.Errorf("layer %q: unknown type %q", lb.Name, lb.Type)
		}
		if len(lb.Layers) > 0 {
			return nil, fmt.Errorf("layer %q: %s layers cannot contain layers", lb.Name, lb.Type)
		}
		m, err = build(a)
	}
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", lb.Name, err)
	}
	if err := a.unused(); err != nil {
		return nil, fmt.Errorf("layer %q: %w", lb.Name, err)
	}
	return m, nil
}

func buildContainer(kind, name string, a *attributes, blocks []*layerBlock) (nn.Module, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%s %q has no layers", kind, name)
	}

	children := make([]nn.Child, 0, len(blocks))
	seen := make(map[string]struct{}, len(blocks))
	for _, lb := range blocks {
		if lb.Name == "" || strings.Contains(lb.Name, ".") {
			return nil, fmt.Errorf("invalid layer name %q", lb.Name)
		}
		if _, dup := seen[lb.Name]; dup {
			return nil, fmt.Errorf("layer %q defined twice", lb.Name)
		}
		seen[lb.Name] = struct{}{}

		m, err := buildLayer(lb)
		if err != nil {
			return nil, err
		}
		children = append(children, nn.Child{Name: lb.Name, Module: m})
	}

	if kind == "sequential" {
		return nn.NewNamedSequential(children...), nil
	}

	activation := a.str("activation", "")
	if err := a.err(); err != nil {
		return nil, err
	}
	if len(children) != 1 {
		return nil, fmt.Errorf("residual %q needs exactly one body layer, got %d", name, len(children))
	}
	return nn.NewResidual(children[0].Module, activation), nil
}

// attributes decodes the free-form attributes of a layer block. Getters
// record the first failure, reported by err.
type attributes struct {
	values map[string]cty.Value
	used   map[string]struct{}
	first  error
}

func newAttributes(body hcl.Body) (*attributes, error) {
	a := &attributes{
		values: make(map[string]cty.Value),
		used:   make(map[string]struct{}),
	}
	if body == nil {
		return a, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		a.values[name] = v
	}
	return a, nil
}

func (a *attributes) decode(name string, dst any) bool {
	a.used[name] = struct{}{}
	v, ok := a.values[name]
	if !ok || v.IsNull() {
		return false
	}
	if err := gocty.FromCtyValue(v, dst); err != nil && a.first == nil {
		a.first = fmt.Errorf("attribute %q: %w", name, err)
	}
	return true
}

func (a *attributes) integer(name string, def int) int {
	v := def
	if !a.decode(name, &v) {
		return def
	}
	return v
}

func (a *attributes) positive(name string) int {
	var v int
	if !a.decode(name, &v) {
		a.fail(fmt.Errorf("missing required attribute %q", name))
		return 0
	}
	if v <= 0 {
		a.fail(fmt.Errorf("attribute %q must be positive, got %d", name, v))
	}
	return v
}

func (a *attributes) number(name string, def float64) float64 {
	v := def
	if !a.decode(name, &v) {
		return def
	}
	return v
}

func (a *attributes) boolean(name string, def bool) bool {
	v := def
	if !a.decode(name, &v) {
		return def
	}
	return v
}

func (a *attributes) str(name, def string) string {
	v := def
	if !a.decode(name, &v) {
		return def
	}
	return v
}

func (a *attributes) fail(err error) {
	if a.first == nil {
		a.first = err
	}
}

func (a *attributes) err() error {
	return a.first
}

func (a *attributes) unused() error {
	var extra []string
	for name := range a.values {
		if _, ok := a.used[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return fmt.Errorf("unsupported attributes: %s", strings.Join(extra, ", "))
}
