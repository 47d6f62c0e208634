package cpu

import (
	"math"

	"github.com/born-ml/convnets/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Padding is implicit -Inf, so padded taps never win. In ceil mode the output
// size rounds up, dropping a final window that would start in the right padding.
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int, ceilMode bool) *tensor.RawTensor {
	requireFloat32("maxpool2d", input)
	n, c, h, w := requireImage("maxpool2d", input)

	if kernelSize <= 0 || stride <= 0 || padding < 0 {
		panic(tensor.NewShapeError("maxpool2d", input.Shape(), "invalid kernel=%d stride=%d padding=%d", kernelSize, stride, padding))
	}
	if padding > kernelSize/2 {
		panic(tensor.NewShapeError("maxpool2d", input.Shape(), "padding %d exceeds half the kernel size %d", padding, kernelSize))
	}

	hOut := tensor.PoolOutputSize(h, kernelSize, stride, padding, ceilMode)
	wOut := tensor.PoolOutputSize(w, kernelSize, stride, padding, ceilMode)
	if hOut <= 0 || wOut <= 0 {
		panic(tensor.NewShapeError("maxpool2d", input.Shape(), "spatial size %dx%d too small for %dx%d window", h, w, kernelSize, kernelSize))
	}

	output := cpu.newRaw("maxpool2d", tensor.Shape{n, c, hOut, wOut})
	in, out := input.AsFloat32(), output.AsFloat32()

	cpu.forPlanes(n, c, func(b, ch int) {
		plane := in[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		dst := out[(b*c+ch)*hOut*wOut : (b*c+ch+1)*hOut*wOut]

		for oh := 0; oh < hOut; oh++ {
			h0 := max(oh*stride-padding, 0)
			h1 := min(oh*stride-padding+kernelSize, h)
			for ow := 0; ow < wOut; ow++ {
				w0 := max(ow*stride-padding, 0)
				w1 := min(ow*stride-padding+kernelSize, w)

				best := float32(math.Inf(-1))
				for ih := h0; ih < h1; ih++ {
					for iw := w0; iw < w1; iw++ {
						if v := plane[ih*w+iw]; v > best {
							best = v
						}
					}
				}
				dst[oh*wOut+ow] = best
			}
		}
	})
	return output
}

// AdaptiveAvgPool2D averages [N, C, H, W] down to [N, C, outH, outW].
//
// Output row i averages input rows [floor(i*H/outH), ceil((i+1)*H/outH)), and
// likewise for columns, so windows may overlap when H is not a multiple of outH.
func (cpu *CPUBackend) AdaptiveAvgPool2D(input *tensor.RawTensor, outH, outW int) *tensor.RawTensor {
	requireFloat32("adaptive_avgpool2d", input)
	n, c, h, w := requireImage("adaptive_avgpool2d", input)
	if outH <= 0 || outW <= 0 {
		panic(tensor.NewShapeError("adaptive_avgpool2d", input.Shape(), "invalid output size %dx%d", outH, outW))
	}

	output := cpu.newRaw("adaptive_avgpool2d", tensor.Shape{n, c, outH, outW})
	in, out := input.AsFloat32(), output.AsFloat32()

	cpu.forPlanes(n, c, func(b, ch int) {
		plane := in[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		dst := out[(b*c+ch)*outH*outW : (b*c+ch+1)*outH*outW]

		for oh := 0; oh < outH; oh++ {
			h0, h1 := adaptiveWindow(oh, h, outH)
			for ow := 0; ow < outW; ow++ {
				w0, w1 := adaptiveWindow(ow, w, outW)

				var sum float32
				for ih := h0; ih < h1; ih++ {
					for iw := w0; iw < w1; iw++ {
						sum += plane[ih*w+iw]
					}
				}
				dst[oh*outW+ow] = sum / float32((h1-h0)*(w1-w0))
			}
		}
	})
	return output
}

// adaptiveWindow returns [floor(i*in/out), ceil((i+1)*in/out)).
func adaptiveWindow(i, in, out int) (int, int) {
	start := i * in / out
	end := ((i+1)*in + out - 1) / out
	return start, end
}
