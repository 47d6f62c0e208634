// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// RawTensor is the low-level tensor representation: a contiguous row-major
// buffer with shape and dtype.
//
// Most users should use the high-level Tensor[T, B] type instead. State
// dicts map parameter paths to RawTensors.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32() // Type-safe access
//	clone := raw.Clone()    // Independent copy
type RawTensor = tensor.RawTensor

// NewRaw creates a new zeroed raw tensor with the given shape, dtype, and device.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
