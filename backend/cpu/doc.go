// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the model zoo.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col grouped convolutions on gonum SGEMM
//   - Dedicated depthwise convolution kernel
//   - Float32 activations
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/models"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    model, err := models.New("resnet18", 10, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(model.Summary())
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each operation allocates
// its own output and does not share mutable state.
package cpu
