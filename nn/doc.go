// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the modules a model is built from.
//
// # Overview
//
// A module owns parameters and named child modules. Leaf modules compute
// their output directly (Forward); composite modules describe how they
// combine their children and the function ops they apply (Trace).
//
//   - Layers: Linear, Conv2D, MaxPool2D, LayerNorm
//   - Activations: ReLU, Sigmoid, Tanh
//   - Shape layers: Flatten, Dropout, Identity, Half
//   - Composites: Sequential, Residual, Scale
//
// # Basic Usage
//
//	model := nn.NewNamedSequential(
//	    nn.Child{Name: "fc1", Module: nn.NewLinear(784, 128, true)},
//	    nn.Child{Name: "act", Module: nn.NewReLU()},
//	    nn.Child{Name: "fc2", Module: nn.NewLinear(128, 10, true)},
//	)
//
// # Custom Modules
//
// A custom composite implements Module and Composite:
//
//	func (b *Block) Trace(g nn.Builder, inputs ...*graph.Node) (*graph.Node, error) {
//	    y, err := g.Call(b.fc, inputs[0])
//	    if err != nil {
//	        return nil, err
//	    }
//	    return g.Apply("relu", y)
//	}
package nn
