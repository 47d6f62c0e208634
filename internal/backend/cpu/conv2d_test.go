package cpu

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnets/internal/tensor"
)

// naiveConv2D is a direct seven-loop grouped convolution used as reference.
func naiveConv2D(in []float32, n, cIn, h, w int, k []float32, cOut, kh, kw, stride, padding, groups int) []float32 {
	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	cg, cog := cIn/groups, cOut/groups
	out := make([]float32, n*cOut*hOut*wOut)

	for b := 0; b < n; b++ {
		for co := 0; co < cOut; co++ {
			grp := co / cog
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					var sum float32
					for ci := 0; ci < cg; ci++ {
						c := grp*cg + ci
						for i := 0; i < kh; i++ {
							for j := 0; j < kw; j++ {
								ih := oh*stride - padding + i
								iw := ow*stride - padding + j
								if ih < 0 || ih >= h || iw < 0 || iw >= w {
									continue
								}
								sum += in[((b*cIn+c)*h+ih)*w+iw] * k[((co*cg+ci)*kh+i)*kw+j]
							}
						}
					}
					out[((b*cOut+co)*hOut+oh)*wOut+ow] = sum
				}
			}
		}
	}
	return out
}

func randomSlice(rng *rand.Rand, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(rng.NormFloat64())
	}
	return out
}

func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := rawFrom(t, tensor.Shape{1, 1, 3, 3}, seq(9, 1))
	// 1 0
	// 0 1
	kernel := rawFrom(t, tensor.Shape{1, 1, 2, 2}, []float32{1, 0, 0, 1})

	output := backend.Conv2D(input, kernel, 1, 0, 1)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{6, 8, 12, 14}, output.AsFloat32())
}

func TestConv2D_Padding(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, []float32{1, 1, 1, 1})
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 3}, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1})

	output := backend.Conv2D(input, kernel, 1, 1, 1)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	// Every window covers the full 2x2 input; padded taps contribute zero.
	assert.Equal(t, []float32{4, 4, 4, 4}, output.AsFloat32())
}

func TestConv2D_MatchesReference(t *testing.T) {
	tests := []struct {
		n, cIn, h, w           int
		cOut, k                int
		stride, padding, groups int
	}{
		{1, 3, 8, 8, 4, 3, 1, 1, 1},
		{2, 3, 9, 7, 5, 3, 2, 1, 1},
		{1, 3, 15, 15, 8, 7, 2, 3, 1},  // ResNet stem geometry
		{2, 4, 6, 6, 6, 1, 1, 0, 1},    // pointwise
		{1, 4, 6, 6, 6, 1, 2, 0, 2},    // strided grouped pointwise
		{2, 4, 8, 8, 8, 3, 1, 1, 2},    // grouped
		{2, 6, 9, 9, 6, 3, 2, 1, 6},    // depthwise
		{1, 5, 11, 11, 5, 5, 2, 2, 5},  // depthwise 5x5
		{1, 4, 5, 5, 8, 3, 1, 1, 4},    // channel multiplier
	}

	rng := rand.New(rand.NewSource(7))
	backend := New()

	for _, tt := range tests {
		name := fmt.Sprintf("n%d_c%d_%dx%d_o%d_k%d_s%d_p%d_g%d",
			tt.n, tt.cIn, tt.h, tt.w, tt.cOut, tt.k, tt.stride, tt.padding, tt.groups)
		t.Run(name, func(t *testing.T) {
			inData := randomSlice(rng, tt.n*tt.cIn*tt.h*tt.w)
			kData := randomSlice(rng, tt.cOut*(tt.cIn/tt.groups)*tt.k*tt.k)

			input := rawFrom(t, tensor.Shape{tt.n, tt.cIn, tt.h, tt.w}, inData)
			kernel := rawFrom(t, tensor.Shape{tt.cOut, tt.cIn / tt.groups, tt.k, tt.k}, kData)

			got := backend.Conv2D(input, kernel, tt.stride, tt.padding, tt.groups)
			want := naiveConv2D(inData, tt.n, tt.cIn, tt.h, tt.w, kData, tt.cOut, tt.k, tt.k, tt.stride, tt.padding, tt.groups)

			hOut := (tt.h+2*tt.padding-tt.k)/tt.stride + 1
			wOut := (tt.w+2*tt.padding-tt.k)/tt.stride + 1
			require.Equal(t, tensor.Shape{tt.n, tt.cOut, hOut, wOut}, got.Shape())
			assert.InDeltaSlice(t, want, got.AsFloat32(), 1e-4)
		})
	}
}

func TestConv2D_ChannelMismatch(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 4, 5, 5}, make([]float32, 100))
	kernel := rawFrom(t, tensor.Shape{2, 3, 3, 3}, make([]float32, 54))

	requireShapePanic(t, func() { backend.Conv2D(input, kernel, 1, 1, 1) })
}

func TestConv2D_GroupMismatch(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 4, 5, 5}, make([]float32, 100))
	// 3 output channels cannot be split into 2 groups.
	kernel := rawFrom(t, tensor.Shape{3, 2, 3, 3}, make([]float32, 54))

	requireShapePanic(t, func() { backend.Conv2D(input, kernel, 1, 1, 2) })
}

func TestConv2D_InputTooSmall(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{1, 1, 2, 2}, make([]float32, 4))
	kernel := rawFrom(t, tensor.Shape{1, 1, 3, 3}, make([]float32, 9))

	requireShapePanic(t, func() { backend.Conv2D(input, kernel, 1, 0, 1) })
}

func TestConv2D_Not4D(t *testing.T) {
	backend := New()
	input := rawFrom(t, tensor.Shape{4, 5}, make([]float32, 20))
	kernel := rawFrom(t, tensor.Shape{1, 1, 1, 1}, []float32{1})

	requireShapePanic(t, func() { backend.Conv2D(input, kernel, 1, 0, 1) })
}
