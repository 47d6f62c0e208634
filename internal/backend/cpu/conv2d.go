package cpu

import (
	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

// Conv2D performs grouped 2D convolution.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels/groups, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where out = (in + 2*padding - kernel)/stride + 1.
//
// Each (batch, group) pair is lowered with im2col to a single SGEMM:
//
//	W_g [C_out/g, C_in/g*K_h*K_w] @ col [C_in/g*K_h*K_w, H_out*W_out]
//
// written straight into the group's output planes. Depthwise convolutions
// (one input and one output channel per group) skip the lowering and run a
// direct per-plane loop instead.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding, groups int) *tensor.RawTensor {
	requireFloat32("conv2d", input, kernel)
	n, cIn, h, w := requireImage("conv2d", input)

	kernelShape := kernel.Shape()
	if len(kernelShape) != 4 {
		panic(tensor.NewShapeError("conv2d", kernelShape, "kernel must be 4D [C_out,C_in/groups,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 || padding < 0 || groups <= 0 {
		panic(tensor.NewShapeError("conv2d", input.Shape(), "invalid stride=%d padding=%d groups=%d", stride, padding, groups))
	}

	cOut, cg, kh, kw := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]
	if cg*groups != cIn {
		panic(tensor.NewShapeError("conv2d", input.Shape(), "expected %d input channels (%d groups of %d), got %d", cg*groups, groups, cg, cIn))
	}
	if cOut%groups != 0 {
		panic(tensor.NewShapeError("conv2d", kernelShape, "%d output channels not divisible by %d groups", cOut, groups))
	}

	hOut := tensor.ConvOutputSize(h, kh, stride, padding)
	wOut := tensor.ConvOutputSize(w, kw, stride, padding)
	if hOut <= 0 || wOut <= 0 {
		panic(tensor.NewShapeError("conv2d", input.Shape(), "spatial size %dx%d too small for %dx%d kernel with padding %d", h, w, kh, kw, padding))
	}

	output := cpu.newRaw("conv2d", tensor.Shape{n, cOut, hOut, wOut})
	g := convGeometry{
		n: n, cIn: cIn, h: h, w: w,
		cOut: cOut, kh: kh, kw: kw,
		hOut: hOut, wOut: wOut,
		stride: stride, padding: padding, groups: groups,
	}

	if cg == 1 && cOut == groups {
		cpu.depthwiseConv(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g)
	} else {
		cpu.groupedConv(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g)
	}
	return output
}

type convGeometry struct {
	n, cIn, h, w           int
	cOut, kh, kw           int
	hOut, wOut             int
	stride, padding, groups int
}

func (cpu *CPUBackend) groupedConv(out, in, kernel []float32, g convGeometry) {
	cg := g.cIn / g.groups
	cog := g.cOut / g.groups
	rows := cg * g.kh * g.kw
	cols := g.hOut * g.wOut
	pointwise := g.kh == 1 && g.kw == 1 && g.stride == 1 && g.padding == 0

	parallel.For(g.n*g.groups, func(item int) {
		b, grp := item/g.groups, item%g.groups
		planes := in[(b*g.cIn+grp*cg)*g.h*g.w : (b*g.cIn+(grp+1)*cg)*g.h*g.w]

		// A 1x1/stride-1 convolution reads the input planes as the column matrix.
		col := planes
		if !pointwise {
			col = make([]float32, rows*cols)
			im2col(col, planes, cg, g)
		}

		wg := kernel[grp*cog*rows : (grp+1)*cog*rows]
		dst := out[(b*g.cOut+grp*cog)*cols : (b*g.cOut+(grp+1)*cog)*cols]
		gemm(blas.NoTrans, general(wg, cog, rows), general(col, rows, cols), general(dst, cog, cols))
	}, cpu.planes)
}

// im2col lays out every receptive field of the given channel planes as a
// column: row (c, ki, kj), column (oh, ow). Out-of-bounds taps read zero.
func im2col(col, planes []float32, channels int, g convGeometry) {
	cols := g.hOut * g.wOut
	row := 0
	for c := 0; c < channels; c++ {
		plane := planes[c*g.h*g.w : (c+1)*g.h*g.w]
		for ki := 0; ki < g.kh; ki++ {
			for kj := 0; kj < g.kw; kj++ {
				dst := col[row*cols : (row+1)*cols]
				for oh := 0; oh < g.hOut; oh++ {
					ih := oh*g.stride - g.padding + ki
					line := dst[oh*g.wOut : (oh+1)*g.wOut]
					if ih < 0 || ih >= g.h {
						clear(line)
						continue
					}
					src := plane[ih*g.w : (ih+1)*g.w]
					for ow := range line {
						iw := ow*g.stride - g.padding + kj
						if iw < 0 || iw >= g.w {
							line[ow] = 0
						} else {
							line[ow] = src[iw]
						}
					}
				}
				row++
			}
		}
	}
}

func (cpu *CPUBackend) depthwiseConv(out, in, kernel []float32, g convGeometry) {
	parallel.ForBatch(g.n, g.cIn, func(b, c int) {
		plane := in[(b*g.cIn+c)*g.h*g.w : (b*g.cIn+c+1)*g.h*g.w]
		k := kernel[c*g.kh*g.kw : (c+1)*g.kh*g.kw]
		dst := out[(b*g.cOut+c)*g.hOut*g.wOut : (b*g.cOut+c+1)*g.hOut*g.wOut]

		for oh := 0; oh < g.hOut; oh++ {
			for ow := 0; ow < g.wOut; ow++ {
				var sum float32
				for ki := 0; ki < g.kh; ki++ {
					ih := oh*g.stride - g.padding + ki
					if ih < 0 || ih >= g.h {
						continue
					}
					for kj := 0; kj < g.kw; kj++ {
						iw := ow*g.stride - g.padding + kj
						if iw < 0 || iw >= g.w {
							continue
						}
						sum += plane[ih*g.w+iw] * k[ki*g.kw+kj]
					}
				}
				dst[oh*g.wOut+ow] = sum
			}
		}
	}, cpu.planes)
}

// AddChannelBias adds bias[c] to every element of channel c.
// Accepts [N, C] and [N, C, H, W] inputs.
func (cpu *CPUBackend) AddChannelBias(x, bias *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("add_bias", x, bias)
	shape := x.Shape()
	if len(shape) != 2 && len(shape) != 4 {
		panic(tensor.NewShapeError("add_bias", shape, "expected [N,C] or [N,C,H,W]"))
	}
	c := shape[1]
	if bias.NumElements() != c {
		panic(tensor.NewShapeError("add_bias", shape, "bias has %d elements, expected %d", bias.NumElements(), c))
	}

	plane := 1
	if len(shape) == 4 {
		plane = shape[2] * shape[3]
	}

	result := cpu.newRaw("add_bias", shape)
	dst, src, b := result.AsFloat32(), x.AsFloat32(), bias.AsFloat32()
	parallel.ForBatch(shape[0], c, func(n, ch int) {
		off := (n*c + ch) * plane
		v := b[ch]
		for i := off; i < off+plane; i++ {
			dst[i] = src[i] + v
		}
	}, cpu.planesFor(plane))
	return result
}

// planesFor picks the plane config for large planes and the element config
// when each plane holds only a handful of values.
func (cpu *CPUBackend) planesFor(planeSize int) parallel.Config {
	if planeSize >= cpu.elems.MinChunkSize {
		return cpu.planes
	}
	return cpu.elems
}
