// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/tensor"
)

// Backend represents the CPU backend implementation.
//
// Convolutions and linear layers run through gonum's float32 GEMM;
// per-plane work is spread across the host's physical cores.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/convnets/backend/cpu"
//	    "github.com/born-ml/convnets/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{1, 3, 224, 224}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewSequential creates a CPU backend that runs every kernel on the
// calling goroutine.
func NewSequential() *Backend {
	return internalcpu.NewSequential()
}
