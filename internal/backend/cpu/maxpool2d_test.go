package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/tensor"
)

func TestMaxPool2D_Basic(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 4, 4}, seq(16, 1))

	output := backend.MaxPool2D(input, 2, 2, 0, false)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{6, 8, 14, 16}, output.AsFloat32())
}

func TestMaxPool2D_MultiChannel(t *testing.T) {
	backend := New()
	data := append(seq(16, 1), seq(16, -16)...)
	input := rawFrom(t, tensor.Shape{1, 2, 4, 4}, data)

	output := backend.MaxPool2D(input, 2, 2, 0, false)

	assert.Equal(t, []float32{6, 8, 14, 16, -11, -9, -3, -1}, output.AsFloat32())
}

func TestMaxPool2D_CeilMode(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 6, 6}, seq(36, 0))

	floor := backend.MaxPool2D(input, 3, 2, 0, false)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, floor.Shape())

	ceil := backend.MaxPool2D(input, 3, 2, 0, true)
	require.Equal(t, tensor.Shape{1, 1, 3, 3}, ceil.Shape())

	// Row and column windows end at indices 2, 4 and 5 (the last one clipped).
	last := []float32{2, 4, 5}
	want := make([]float32, 0, 9)
	for _, r := range last {
		for _, c := range last {
			want = append(want, r*6+c)
		}
	}
	assert.Equal(t, want, ceil.AsFloat32())
}

func TestMaxPool2D_PaddingIsNegativeInfinity(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, []float32{-1, -2, -3, -4})

	output := backend.MaxPool2D(input, 3, 1, 1, false)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{-1, -1, -1, -1}, output.AsFloat32())
}

func TestMaxPool2D_ResNetStem(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 112, 112}, make([]float32, 112*112))

	output := backend.MaxPool2D(input, 3, 2, 1, false)
	assert.Equal(t, tensor.Shape{1, 1, 56, 56}, output.Shape())
}

func TestMaxPool2D_Errors(t *testing.T) {
	backend := New()
	small := rawFrom(t, tensor.Shape{1, 1, 2, 2}, make([]float32, 4))

	requireShapePanic(t, func() { backend.MaxPool2D(small, 3, 2, 0, false) })
	requireShapePanic(t, func() { backend.MaxPool2D(small, 2, 2, 2, false) })
	requireShapePanic(t, func() { backend.MaxPool2D(small, 0, 1, 0, false) })
}

func TestAdaptiveAvgPool2D_GlobalAverage(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{2, 1, 2, 2}, []float32{1, 2, 3, 4, 10, 20, 30, 40})

	output := backend.AdaptiveAvgPool2D(input, 1, 1)

	require.Equal(t, tensor.Shape{2, 1, 1, 1}, output.Shape())
	assert.InDeltaSlice(t, []float32{2.5, 25}, output.AsFloat32(), 1e-6)
}

func TestAdaptiveAvgPool2D_NonDivisible(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 1, 5}, []float32{1, 2, 3, 4, 5})

	output := backend.AdaptiveAvgPool2D(input, 1, 3)

	// Windows [0,2) [1,4) [3,5).
	assert.InDeltaSlice(t, []float32{1.5, 3, 4.5}, output.AsFloat32(), 1e-6)
}

func TestAdaptiveAvgPool2D_Upsample(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 1, 1}, []float32{3})

	output := backend.AdaptiveAvgPool2D(input, 7, 7)

	require.Equal(t, tensor.Shape{1, 1, 7, 7}, output.Shape())
	for _, v := range output.AsFloat32() {
		assert.InDelta(t, 3, v, 1e-6)
	}
}
