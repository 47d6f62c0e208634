// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types of the convnets zoo.
//
// # Overview
//
// Activations flow through the architectures as channel-first float32
// tensors of shape [batch, channels, height, width]; after flattening they
// are [batch, features]. This package exposes:
//   - Generic type-safe tensors (Tensor[T, B])
//   - The Backend interface the layers compute through
//   - Shape helpers, including the convolution and pooling size rules
//   - ShapeError, returned when a tensor does not fit an operation
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(1))
//
//	    x := tensor.Randn[float32](tensor.Shape{1, 3, 224, 224}, rng, backend)
//	    y := x.ReLU()
//	    fmt.Println(y) // Tensor[float32][1 3 224 224] on CPU
//	}
//
// # Shapes
//
// Convolution output sizes follow floor((in + 2*pad - kernel) / stride) + 1:
//
//	tensor.ConvOutputSize(224, 7, 2, 3) // 112
//
// Ceil-mode pooling rounds up and drops a last window that would start in
// the padding:
//
//	tensor.PoolOutputSize(109, 3, 2, 0, true) // 54
//
// # Errors
//
// Operations on tensors that do not fit panic with *ShapeError, which wraps
// ErrShape. Model-level entry points convert these into returned errors.
package tensor
