// Package config loads model definitions written in HCL.
//
// A file holds one or more model blocks. Each model lists its layers in
// order; container layers (sequential, residual) nest further layer blocks:
//
//	model "mlp" {
//	  input_shape = [1, 4]
//	  freeze      = ["encoder.*"]
//
//	  layer "linear" "encoder" {
//	    in  = 4
//	    out = 8
//	  }
//	  layer "relu" "act" {}
//	  layer "residual" "block" {
//	    activation = "relu"
//	    layer "linear" "body" {
//	      in  = 8
//	      out = 8
//	    }
//	  }
//	}
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/born-ml/tailor/internal/ctxlog"
	"github.com/born-ml/tailor/internal/nn"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Model is a model definition built into modules.
type Model struct {
	Name       string
	InputShape []int    // default probe shape, may be empty
	Freeze     []string // module name patterns frozen after loading
	Module     nn.Module
	Source     string
}

type fileRoot struct {
	Models []*modelBlock `hcl:"model,block"`
}

type modelBlock struct {
	Name       string        `hcl:"name,label"`
	InputShape []int         `hcl:"input_shape,optional"`
	Freeze     []string      `hcl:"freeze,optional"`
	Layers     []*layerBlock `hcl:"layer,block"`
}

type layerBlock struct {
	Type   string        `hcl:"type,label"`
	Name   string        `hcl:"name,label"`
	Layers []*layerBlock `hcl:"layer,block"`
	Remain hcl.Body      `hcl:",remain"`
}

// Load reads and builds every model defined in the HCL file at path.
func Load(ctx context.Context, path string) ([]*Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return Parse(ctx, src, path)
}

// Parse builds every model defined in src. filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) ([]*Model, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if len(root.Models) == 0 {
		return nil, fmt.Errorf("%s: no model blocks", filename)
	}

	seen := make(map[string]struct{})
	models := make([]*Model, 0, len(root.Models))
	for _, mb := range root.Models {
		if _, dup := seen[mb.Name]; dup {
			return nil, fmt.Errorf("%s: model %q defined twice", filename, mb.Name)
		}
		seen[mb.Name] = struct{}{}

		module, err := buildContainer("sequential", mb.Name, nil, mb.Layers)
		if err != nil {
			return nil, fmt.Errorf("%s: model %q: %w", filename, mb.Name, err)
		}
		for i, d := range mb.InputShape {
			if d <= 0 {
				return nil, fmt.Errorf("%s: model %q: input_shape[%d] is %d", filename, mb.Name, i, d)
			}
		}
		models = append(models, &Model{
			Name:       mb.Name,
			InputShape: mb.InputShape,
			Freeze:     mb.Freeze,
			Module:     module,
			Source:     filename,
		})
		logger.Debug("Model loaded.", "model", mb.Name, "layers", len(mb.Layers), "file", filename)
	}
	return models, nil
}

// Find returns the model called name, or the first model when name is "".
func Find(models []*Model, name string) (*Model, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no models")
	}
	if name == "" {
		return models[0], nil
	}
	for _, m := range models {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no model named %q", name)
}
