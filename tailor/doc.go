// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tailor inspects the layers of a model.
//
// Interpret traces the model, runs a probe input of the requested shape
// through it and returns one Record per layer call:
//
//	tl, err := tailor.New(model)
//	if err != nil {
//	    return err
//	}
//	records, err := tl.Interpret([]int{1, 3, 32, 32}, true)
//	for _, r := range records {
//	    fmt.Println(r.Name, r.NumParams, r.Trainable, r.DType(), r.ShapeString())
//	}
//
// Visualizer, Freezer and Rewriter operate on the same model.
package tailor
