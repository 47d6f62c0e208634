package cpu

import (
	"github.com/born-ml/convnets/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same number of dimensions and matching sizes
// along every other dimension.
//
// Example:
//
//	a: [1, 64, 55, 55], b: [1, 64, 55, 55]
//	Cat([a, b], dim=1) -> [1, 128, 55, 55]
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic(tensor.NewShapeError("cat", nil, "no tensors to concatenate"))
	}
	requireFloat32("cat", tensors...)

	first := tensors[0].Shape()
	ndim := len(first)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(tensor.NewShapeError("cat", first, "dim %d out of range for %dD tensors", dim, ndim))
	}

	outShape := first.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if len(s) != ndim {
			panic(tensor.NewShapeError("cat", s, "tensor %d has %d dims, expected %d", i, len(s), ndim))
		}
		for d := 0; d < ndim; d++ {
			if d != dim && s[d] != first[d] {
				panic(tensor.NewShapeError("cat", s, "tensor %d has size %d at dim %d, expected %d", i, s[d], d, first[d]))
			}
		}
		outShape[dim] += s[dim]
	}

	result := cpu.newRaw("cat", outShape)
	dst := result.AsFloat32()

	// Every tensor contributes a contiguous run of size[dim]*inner per outer index.
	outer := first[:dim].NumElements()
	inner := first[dim+1:].NumElements()
	row := outShape[dim] * inner
	offset := 0
	for _, t := range tensors {
		src := t.AsFloat32()
		run := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(dst[o*row+offset:o*row+offset+run], src[o*run:(o+1)*run])
		}
		offset += run
	}
	return result
}

// Reshape returns a view of t with a new shape and the same element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	view, err := t.View(newShape)
	if err != nil {
		panic(err)
	}
	return view
}

// ScaleChannels multiplies every (n, c) plane of x [N, C, H, W] by gate[n, c, 0, 0].
func (cpu *CPUBackend) ScaleChannels(x, gate *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("scale_channels", x, gate)
	n, c, h, w := requireImage("scale_channels", x)
	if gs := gate.Shape(); len(gs) != 4 || gs[0] != n || gs[1] != c || gs[2] != 1 || gs[3] != 1 {
		panic(tensor.NewShapeError("scale_channels", x.Shape(), "gate shape %v, expected [%d %d 1 1]", []int(gs), n, c))
	}

	result := cpu.newRaw("scale_channels", x.Shape())
	src, dst, g := x.AsFloat32(), result.AsFloat32(), gate.AsFloat32()
	plane := h * w
	cpu.forPlanes(n, c, func(b, ch int) {
		off := (b*c + ch) * plane
		s := g[b*c+ch]
		for i := off; i < off+plane; i++ {
			dst[i] = src[i] * s
		}
	})
	return result
}
