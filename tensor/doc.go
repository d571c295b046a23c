// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense CPU tensors modules operate on.
//
// Values are held as float32 whatever the logical DType; casting to a
// narrower float type rounds through that type.
//
//	x, err := tensor.Randn(tensor.Shape{1, 3, 32, 32}, nil)
package tensor
