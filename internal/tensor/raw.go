package tensor

import (
	"fmt"
	"unsafe"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a contiguous row-major
// byte buffer plus shape and dtype.
type RawTensor struct {
	data   []byte   // Backing memory, row-major
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
	device Device   // Compute device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 returns the elements as []float32, sharing memory.
// Panics with an ErrUnsupported-wrapped error for any other dtype.
func (r *RawTensor) AsFloat32() []float32 { return view[float32](r, Float32) }

// AsFloat64 returns the elements as []float64, sharing memory.
func (r *RawTensor) AsFloat64() []float64 { return view[float64](r, Float64) }

// AsInt32 returns the elements as []int32, sharing memory.
func (r *RawTensor) AsInt32() []int32 { return view[int32](r, Int32) }

// AsInt64 returns the elements as []int64, sharing memory.
func (r *RawTensor) AsInt64() []int64 { return view[int64](r, Int64) }

// typedData returns the element slice matching the tensor's dtype.
func (r *RawTensor) typedData() any {
	switch r.dtype {
	case Float32:
		return r.AsFloat32()
	case Float64:
		return r.AsFloat64()
	case Int32:
		return r.AsInt32()
	case Int64:
		return r.AsInt64()
	default:
		panic(UnsupportedDTypeError("data", r.dtype))
	}
}

func view[T DType](r *RawTensor, want DataType) []T {
	if r.dtype != want {
		panic(UnsupportedDTypeError("as "+want.String(), r.dtype))
	}
	//nolint:gosec // length is NumElements of a buffer sized for this dtype
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Clone returns a deep copy with its own buffer.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// View returns a tensor sharing this buffer under a new shape.
// The element count must be unchanged.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, NewShapeError("reshape", r.shape, "cannot view %d elements as %v", r.NumElements(), []int(shape))
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
		device: r.device,
	}, nil
}
