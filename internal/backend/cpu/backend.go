// Package cpu implements the CPU backend: float32 kernels with gonum BLAS
// for the matrix products behind convolution and linear layers.
package cpu

import (
	"fmt"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// Verify that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
	elems  parallel.Config // element-wise loops
	planes parallel.Config // per-plane and per-group loops
}

// New creates a new CPU backend sized to the host's physical cores.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		elems:  parallel.DefaultConfig(),
		planes: parallel.PlaneConfig(),
	}
}

// NewSequential creates a CPU backend that never spawns goroutines.
func NewSequential() *CPUBackend {
	cpu := New()
	cpu.elems.Enabled = false
	cpu.planes.Enabled = false
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// newRaw allocates a float32 result or panics; shapes reaching it are already validated.
func (cpu *CPUBackend) newRaw(op string, shape tensor.Shape) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Errorf("%s: failed to create result tensor: %w", op, err))
	}
	return result
}

// requireFloat32 panics with an unsupported-dtype error unless every operand is float32.
func requireFloat32(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t.DType() != tensor.Float32 {
			panic(tensor.UnsupportedDTypeError(op, t.DType()))
		}
	}
}

// requireImage panics with a shape error unless x is [N, C, H, W].
func requireImage(op string, x *tensor.RawTensor) (n, c, h, w int) {
	s := x.Shape()
	if len(s) != 4 {
		panic(tensor.NewShapeError(op, s, "expected 4D input [N,C,H,W], got %dD", len(s)))
	}
	return s[0], s[1], s[2], s[3]
}

// Add performs strict same-shape element-wise addition.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Mul performs strict same-shape element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// MulScalar multiplies every element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return cpu.unary("mul_scalar", x, func(v float32) float32 { return v * s })
}

func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor, f func(x, y float32) float32) *tensor.RawTensor {
	requireFloat32(op, a, b)
	if !a.Shape().Equal(b.Shape()) {
		panic(tensor.NewShapeError(op, a.Shape(), "operand shapes differ: %v vs %v", []int(a.Shape()), []int(b.Shape())))
	}

	result := cpu.newRaw(op, a.Shape())
	dst, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
	parallel.For(len(dst), func(i int) {
		dst[i] = f(x[i], y[i])
	}, cpu.elems)
	return result
}

func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f func(v float32) float32) *tensor.RawTensor {
	requireFloat32(op, x)

	result := cpu.newRaw(op, x.Shape())
	dst, src := result.AsFloat32(), x.AsFloat32()
	parallel.For(len(dst), func(i int) {
		dst[i] = f(src[i])
	}, cpu.elems)
	return result
}

// forPlanes runs f over every (batch, channel) plane.
func (cpu *CPUBackend) forPlanes(batch, channels int, f func(b, c int)) {
	parallel.ForBatch(batch, channels, f, cpu.planes)
}
