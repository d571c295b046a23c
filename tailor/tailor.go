// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tailor

import (
	"github.com/born-ml/tailor/internal/tailor"
	"github.com/born-ml/tailor/nn"
)

// Tailor inspects one root module.
type Tailor = tailor.Tailor

// Record summarizes one layer call.
type Record = tailor.Record

// Option configures a Tailor.
type Option = tailor.Option

// InputFunc creates probe inputs.
type InputFunc = tailor.InputFunc

// State is the stage an Interpret call last reached.
type State = tailor.State

// ShapeError describes an invalid input shape.
type ShapeError = tailor.ShapeError

// Format selects how records are rendered.
type Format = tailor.Format

// Rendering formats.
const (
	FormatTable   = tailor.FormatTable
	FormatDOT     = tailor.FormatDOT
	FormatMermaid = tailor.FormatMermaid
	FormatJSON    = tailor.FormatJSON
)

// Unknown is the dtype and shape of a record without tensor metadata.
const Unknown = tailor.Unknown

// Errors.
var (
	ErrInvalidShape = tailor.ErrInvalidShape
	ErrNilModel     = tailor.ErrNilModel
)

// New creates a Tailor for model.
func New(model nn.Module, opts ...Option) (*Tailor, error) {
	return tailor.New(model, opts...)
}

// Options.
var (
	WithTracer     = tailor.WithTracer
	WithPropagator = tailor.WithPropagator
	WithInput      = tailor.WithInput
	WithRegistry   = tailor.WithRegistry
	WithLogger     = tailor.WithLogger
)

// Probe input strategies.
var (
	RandomInput InputFunc = tailor.RandomInput
	ZeroInput   InputFunc = tailor.ZeroInput
	SeededInput           = tailor.SeededInput
)

// Visualizer renders records.
type Visualizer = tailor.Visualizer

// NewVisualizer creates a visualizer for tl's model.
func NewVisualizer(tl *Tailor) *Visualizer {
	return tailor.NewVisualizer(tl)
}

// Freezer toggles parameter trainability by module name.
type Freezer = tailor.Freezer

// NewFreezer creates a freezer for tl's model.
func NewFreezer(tl *Tailor) *Freezer {
	return tailor.NewFreezer(tl)
}

// Rewriter replaces named sublayers.
type Rewriter = tailor.Rewriter

// NewRewriter creates a rewriter for tl's model.
func NewRewriter(tl *Tailor) *Rewriter {
	return tailor.NewRewriter(tl)
}
