package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/tensor"
)

func TestChannelMoments(t *testing.T) {
	backend := New()
	// Channel 0: {1, 2, 3, 4}; channel 1: {5, 5, 5, 5}.
	x := rawFrom(t, tensor.Shape{2, 2, 1, 2}, []float32{1, 2, 5, 5, 3, 4, 5, 5})

	mean, variance := backend.ChannelMoments(x)

	require.Equal(t, tensor.Shape{2}, mean.Shape())
	assert.InDeltaSlice(t, []float32{2.5, 5}, mean.AsFloat32(), 1e-6)
	assert.InDeltaSlice(t, []float32{1.25, 0}, variance.AsFloat32(), 1e-6)
}

func TestBatchNorm2D(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 2, 1, 2}, []float32{1, 3, 10, 20})
	mean := rawFrom(t, tensor.Shape{2}, []float32{2, 15})
	variance := rawFrom(t, tensor.Shape{2}, []float32{1, 25})
	weight := rawFrom(t, tensor.Shape{2}, []float32{1, 2})
	bias := rawFrom(t, tensor.Shape{2}, []float32{0, 1})

	out := backend.BatchNorm2D(x, mean, variance, weight, bias, 0)

	assert.InDeltaSlice(t, []float32{-1, 1, -1, 3}, out.AsFloat32(), 1e-6)
}

func TestBatchNorm2D_Epsilon(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 1, 1, 1}, []float32{1})
	zero := rawFrom(t, tensor.Shape{1}, []float32{0})
	one := rawFrom(t, tensor.Shape{1}, []float32{1})

	out := backend.BatchNorm2D(x, zero, zero, one, zero, 1e-5)

	assert.InDelta(t, 1/math.Sqrt(1e-5), out.AsFloat32()[0], 1e-1)
}

func TestBatchNorm2D_ChannelMismatch(t *testing.T) {
	backend := New()
	x := rawFrom(t, tensor.Shape{1, 3, 1, 1}, []float32{1, 2, 3})
	stat := rawFrom(t, tensor.Shape{2}, []float32{0, 0})

	requireShapePanic(t, func() { backend.BatchNorm2D(x, stat, stat, stat, stat, 1e-5) })
}
