package tailor

import (
	"path"
	"strings"

	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/pkg/errors"
)

// Freezer toggles the trainability of parameters by module name.
type Freezer struct {
	tl *Tailor
}

// NewFreezer creates a freezer for the model held by tl.
func NewFreezer(tl *Tailor) *Freezer {
	return &Freezer{tl: tl}
}

// Freeze marks every parameter in the subtrees of the modules matching any
// of patterns as not trainable. Patterns are path.Match globs over dotted
// module names ("features.*", "head"). It returns the number of distinct
// parameters matched.
func (f *Freezer) Freeze(patterns ...string) (int, error) {
	return f.set(false, patterns)
}

// Unfreeze is the inverse of Freeze.
func (f *Freezer) Unfreeze(patterns ...string) (int, error) {
	return f.set(true, patterns)
}

func (f *Freezer) set(requiresGrad bool, patterns []string) (int, error) {
	ix, err := naming.Build(f.tl.Model())
	if err != nil {
		return 0, err
	}

	touched := make(map[*nn.Parameter]struct{})
	for _, name := range ix.Names() {
		matched, err := matchAny(patterns, name)
		if err != nil {
			return 0, err
		}
		if !matched {
			continue
		}
		m, _ := ix.Module(name)
		params, err := subtreeParameters(m)
		if err != nil {
			return 0, errors.Wrapf(err, "tailor: module %q", name)
		}
		for _, p := range params {
			touched[p] = struct{}{}
		}
	}

	for p := range touched {
		p.SetRequiresGrad(requiresGrad)
	}
	f.tl.logger.Debug("trainability changed",
		"patterns", strings.Join(patterns, ","), "requires_grad", requiresGrad, "parameters", len(touched))
	return len(touched), nil
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return false, errors.Wrapf(err, "tailor: pattern %q", pattern)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func subtreeParameters(m nn.Module) ([]*nn.Parameter, error) {
	ix, err := naming.Build(m)
	if err != nil {
		return nil, err
	}
	seen := make(map[*nn.Parameter]struct{})
	var out []*nn.Parameter
	for _, name := range ix.Names() {
		sub, _ := ix.Module(name)
		for _, p := range sub.Parameters() {
			if p == nil {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}
