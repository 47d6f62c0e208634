package nn

import (
	"fmt"

	"github.com/born-ml/convnets/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Example:
//
//	pool := nn.NewMaxPool2D[B](3, 2, 1, false) // ResNet stem
//	output := pool.Forward(input)
type MaxPool2D[B tensor.Backend] struct {
	stateless[B]
	kernelSize int
	stride     int
	padding    int
	ceilMode   bool
}

// NewMaxPool2D creates a max pooling layer. Padding is implicit -Inf and may
// be at most half the kernel size.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, ceilMode bool) *MaxPool2D[B] {
	switch {
	case kernelSize <= 0:
		panic(fmt.Errorf("maxpool2d: invalid kernel size %d: %w", kernelSize, ErrInvalidConfig))
	case stride <= 0:
		panic(fmt.Errorf("maxpool2d: invalid stride %d: %w", stride, ErrInvalidConfig))
	case padding < 0 || padding > kernelSize/2:
		panic(fmt.Errorf("maxpool2d: padding %d must be in [0, %d]: %w", padding, kernelSize/2, ErrInvalidConfig))
	}

	return &MaxPool2D[B]{
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
		ceilMode:   ceilMode,
	}
}

// Forward applies max pooling.
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := m.OutputShape(input.Shape()); err != nil {
		panic(err)
	}
	b := input.Backend()
	return tensor.New[float32, B](b.MaxPool2D(input.Raw(), m.kernelSize, m.stride, m.padding, m.ceilMode), b)
}

// OutputShape returns the pooled shape.
func (m *MaxPool2D[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 {
		return nil, tensor.NewShapeError("maxpool2d", in, "expected 4D input [N,C,H,W], got %dD", len(in))
	}
	h := tensor.PoolOutputSize(in[2], m.kernelSize, m.stride, m.padding, m.ceilMode)
	w := tensor.PoolOutputSize(in[3], m.kernelSize, m.stride, m.padding, m.ceilMode)
	if h <= 0 || w <= 0 {
		return nil, tensor.NewShapeError("maxpool2d", in, "spatial size %dx%d too small for %dx%d window",
			in[2], in[3], m.kernelSize, m.kernelSize)
	}
	return tensor.Shape{in[0], in[1], h, w}, nil
}

// Kind returns KindPool.
func (m *MaxPool2D[B]) Kind() Kind {
	return KindPool
}

// String returns a string representation of the layer.
func (m *MaxPool2D[B]) String() string {
	return fmt.Sprintf("MaxPool2d(kernel_size=%d, stride=%d, padding=%d, ceil_mode=%v)",
		m.kernelSize, m.stride, m.padding, m.ceilMode)
}

// AdaptiveAvgPool2D averages each plane down to a fixed output size,
// whatever the input resolution.
type AdaptiveAvgPool2D[B tensor.Backend] struct {
	stateless[B]
	outH, outW int
}

// NewAdaptiveAvgPool2D creates an adaptive average pool with output outH x outW.
func NewAdaptiveAvgPool2D[B tensor.Backend](outH, outW int) *AdaptiveAvgPool2D[B] {
	if outH <= 0 || outW <= 0 {
		panic(fmt.Errorf("adaptive_avgpool2d: invalid output size %dx%d: %w", outH, outW, ErrInvalidConfig))
	}
	return &AdaptiveAvgPool2D[B]{outH: outH, outW: outW}
}

// Forward applies adaptive average pooling.
func (a *AdaptiveAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := a.OutputShape(input.Shape()); err != nil {
		panic(err)
	}
	b := input.Backend()
	return tensor.New[float32, B](b.AdaptiveAvgPool2D(input.Raw(), a.outH, a.outW), b)
}

// OutputShape returns [N, C, outH, outW].
func (a *AdaptiveAvgPool2D[B]) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 {
		return nil, tensor.NewShapeError("adaptive_avgpool2d", in, "expected 4D input [N,C,H,W], got %dD", len(in))
	}
	return tensor.Shape{in[0], in[1], a.outH, a.outW}, nil
}

// Kind returns KindPool.
func (a *AdaptiveAvgPool2D[B]) Kind() Kind {
	return KindPool
}

// String returns a string representation of the layer.
func (a *AdaptiveAvgPool2D[B]) String() string {
	return fmt.Sprintf("AdaptiveAvgPool2d(output_size=(%d, %d))", a.outH, a.outW)
}
