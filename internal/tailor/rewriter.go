package tailor

import (
	"fmt"
	"strings"

	"github.com/born-ml/tailor/internal/naming"
	"github.com/born-ml/tailor/internal/nn"
)

// Rewriter substitutes named sublayers of a model.
type Rewriter struct {
	tl *Tailor
}

// NewRewriter creates a rewriter for the model held by tl.
func NewRewriter(tl *Tailor) *Rewriter {
	return &Rewriter{tl: tl}
}

// Replace swaps the module registered under name for m and returns the
// module it replaced. The parent of name must implement nn.Mutable. The
// root itself cannot be replaced.
func (rw *Rewriter) Replace(name string, m nn.Module) (nn.Module, error) {
	if name == "" {
		return nil, fmt.Errorf("tailor: cannot replace the root module")
	}
	if m == nil {
		return nil, fmt.Errorf("tailor: replacement for %q is nil", name)
	}

	ix, err := naming.Build(rw.tl.Model())
	if err != nil {
		return nil, err
	}
	old, ok := ix.Module(name)
	if !ok {
		return nil, fmt.Errorf("tailor: no module named %q", name)
	}

	parentName, childName := "", name
	if i := strings.LastIndex(name, "."); i >= 0 {
		parentName, childName = name[:i], name[i+1:]
	}
	parent, _ := ix.Module(parentName)
	mutable, ok := parent.(nn.Mutable)
	if !ok {
		return nil, fmt.Errorf("tailor: parent of %q (%T) does not support replacing children", name, parent)
	}
	if err := mutable.SetChild(childName, m); err != nil {
		return nil, fmt.Errorf("tailor: replace %q: %w", name, err)
	}

	rw.tl.logger.Debug("module replaced", "name", name, "old", fmt.Sprintf("%T", old), "new", fmt.Sprintf("%T", m))
	return old, nil
}
