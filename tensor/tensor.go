// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/convnets/internal/tensor"
)

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64.
type DType = tensor.DType

// DataType represents the runtime element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the only device of this module.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor.
// Example: Shape{8, 3, 224, 224} is a batch of eight RGB images.
type Shape = tensor.Shape

// Tensor is a generic type-safe tensor.
//
// T is the element type, B the backend that executes its operations.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y) // Element-wise addition
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Errors.
var (
	// ErrShape is wrapped by every *ShapeError.
	ErrShape = tensor.ErrShape
	// ErrUnsupported is wrapped by errors for dtypes or architectures that are not available.
	ErrUnsupported = tensor.ErrUnsupported
)

// ShapeError reports a tensor whose shape does not fit an operation.
type ShapeError = tensor.ShapeError

// ConvOutputSize returns the output length of a convolution along one axis.
func ConvOutputSize(in, kernel, stride, padding int) int {
	return tensor.ConvOutputSize(in, kernel, stride, padding)
}

// PoolOutputSize returns the output length of max pooling along one axis.
func PoolOutputSize(in, kernel, stride, padding int, ceilMode bool) int {
	return tensor.PoolOutputSize(in, kernel, stride, padding, ceilMode)
}

// Creation functions

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	x := tensor.Randn[float32](tensor.Shape{8, 3, 224, 224}, rng, backend)
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, rng, b)
}

// Uniform creates a tensor with values drawn from U(low, high) using rng.
func Uniform[T DType, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	return tensor.Uniform[T, B](shape, low, high, rng, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	backend := cpu.New()
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a raw tensor.
//
// This is a low-level function. Most users should use creation functions like
// Zeros, Ones, or FromSlice instead.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// Cat concatenates tensors along a dimension.
//
// Example:
//
//	a := tensor.Ones[float32](tensor.Shape{1, 64, 56, 56}, backend)
//	b := tensor.Zeros[float32](tensor.Shape{1, 64, 56, 56}, backend)
//	c := tensor.Cat([]*tensor.Tensor[float32, B]{a, b}, 1) // Shape: [1, 128, 56, 56]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}
