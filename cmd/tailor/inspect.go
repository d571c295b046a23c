package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/tailor/internal/config"
	"github.com/born-ml/tailor/internal/ctxlog"
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/spf13/cobra"
)

// modelFlags are shared by the commands that load a model file.
type modelFlags struct {
	model string
	input string
	seed  int64
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "model to load (default: first in file)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "probe input shape, e.g. 1,3,32,32 (default: the model's input_shape)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "seed probe values (0 draws random values)")
}

// session is a loaded model ready to be interpreted.
type session struct {
	def    *config.Model
	tailor *tailor.Tailor
	shape  []int
}

func (f *modelFlags) load(ctx context.Context, path string) (*session, error) {
	logger := ctxlog.FromContext(ctx)

	models, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	def, err := config.Find(models, f.model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	shape := def.InputShape
	if f.input != "" {
		if shape, err = parseShape(f.input); err != nil {
			return nil, err
		}
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("model %q has no input_shape; pass --input", def.Name)
	}

	opts := []tailor.Option{tailor.WithLogger(logger.With("model", def.Name))}
	if f.seed != 0 {
		opts = append(opts, tailor.WithInput(tailor.SeededInput(f.seed)))
	}
	tl, err := tailor.New(def.Module, opts...)
	if err != nil {
		return nil, err
	}
	if len(def.Freeze) > 0 {
		n, err := tailor.NewFreezer(tl).Freeze(def.Freeze...)
		if err != nil {
			return nil, err
		}
		logger.Info("Frozen parameters.", "model", def.Name, "count", n)
	}
	return &session{def: def, tailor: tl, shape: shape}, nil
}

// parseShape parses a comma separated list of dimensions. Positivity is
// checked by Interpret.
func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid input shape %q: %w", s, err)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
