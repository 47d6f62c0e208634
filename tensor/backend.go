// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/convnets/internal/tensor"

// Backend defines the primitive operations every layer computes through:
// element-wise arithmetic, matrix multiplication, grouped convolution,
// pooling, batch normalization, activations and channel concatenation.
//
// Implementations:
//   - backend/cpu: Pure Go, gonum SGEMM for convolutions and projections
//
// Backends panic with *ShapeError on mismatched operands and with an
// ErrUnsupported-wrapped error on dtypes they cannot handle.
type Backend = tensor.Backend
