package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// IsImage reports whether the shape is a 4D channel-first image batch (N, C, H, W).
func (s Shape) IsImage() bool {
	return len(s) == 4
}

// ConvOutputSize returns floor((in + 2*padding - kernel) / stride) + 1, or a
// non-positive value when the window does not fit.
func ConvOutputSize(in, kernel, stride, padding int) int {
	span := in + 2*padding - kernel
	if span < 0 {
		return 0
	}
	return span/stride + 1
}

// PoolOutputSize is ConvOutputSize with optional ceil rounding.
//
// In ceil mode the last window is dropped when it would start inside the
// right padding.
func PoolOutputSize(in, kernel, stride, padding int, ceilMode bool) int {
	span := in + 2*padding - kernel
	if span < 0 {
		return 0
	}
	if !ceilMode {
		return span/stride + 1
	}
	out := (span+stride-1)/stride + 1
	if (out-1)*stride >= in+padding {
		out--
	}
	return out
}
