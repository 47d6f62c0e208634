// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and building blocks the model zoo is
// assembled from.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D (grouped, depthwise), BatchNorm2D, Linear, MaxPool2D, AdaptiveAvgPool2D, Dropout, Flatten
//   - Activations: ReLU, ReLU6, HardSigmoid, HardSwish
//   - Containers: Sequential, Concat
//   - Blocks: ConvNormAct, Residual, InvertedResidual, SqueezeExcitation, Fire
//   - Utilities: Module interface, Parameter, Walk, Save, Load
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/nn"
//	)
//
//	type Backend = *cpu.Backend
//
//	func main() {
//	    backend := cpu.New()
//	    init := nn.NewInitializer(42)
//
//	    block := nn.NewSequential[Backend](
//	        nn.NewConvNormAct(nn.ConvSpec{In: 3, Out: 64, Kernel: 7, Stride: 2, Padding: 3}, nn.NewReLU[Backend](), init, backend),
//	        nn.NewMaxPool2D[Backend](3, 2, 1, false),
//	        nn.NewResidual(64, 64, 1, init, backend),
//	    )
//
//	    shape, err := block.OutputShape(tensor.Shape{1, 3, 224, 224}) // [1 64 56 56]
//	}
//
// # State Dicts
//
// Every module exports its parameters and buffers under dotted paths that
// follow the ownership tree, e.g. "0.conv.weight" or "2.bn1.running_var".
// LoadStateDict checks every shape before copying.
//
// # Training Mode
//
// Modules start in inference mode. SetTraining switches BatchNorm2D to
// batch statistics and enables Dropout across a whole tree.
package nn
