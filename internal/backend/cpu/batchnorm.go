package cpu

import (
	"math"

	"github.com/born-ml/convnets/internal/tensor"
)

// ChannelMoments returns the per-channel mean and biased variance of an
// [N, C, H, W] tensor as two [C] tensors.
func (cpu *CPUBackend) ChannelMoments(x *tensor.RawTensor) (mean, variance *tensor.RawTensor) {
	requireFloat32("batchnorm2d", x)
	n, c, h, w := requireImage("batchnorm2d", x)

	mean = cpu.newRaw("batchnorm2d", tensor.Shape{c})
	variance = cpu.newRaw("batchnorm2d", tensor.Shape{c})
	src, m, v := x.AsFloat32(), mean.AsFloat32(), variance.AsFloat32()
	plane := h * w
	count := float64(n * plane)

	cpu.forPlanes(1, c, func(_, ch int) {
		// Two passes in float64 keep the variance stable for large planes.
		var sum float64
		for b := 0; b < n; b++ {
			for _, val := range src[(b*c+ch)*plane : (b*c+ch+1)*plane] {
				sum += float64(val)
			}
		}
		mu := sum / count

		var sq float64
		for b := 0; b < n; b++ {
			for _, val := range src[(b*c+ch)*plane : (b*c+ch+1)*plane] {
				d := float64(val) - mu
				sq += d * d
			}
		}
		m[ch] = float32(mu)
		v[ch] = float32(sq / count)
	})
	return mean, variance
}

// BatchNorm2D normalizes each channel of [N, C, H, W]:
//
//	y = (x - mean[c]) / sqrt(variance[c] + eps) * weight[c] + bias[c]
func (cpu *CPUBackend) BatchNorm2D(x, mean, variance, weight, bias *tensor.RawTensor, eps float32) *tensor.RawTensor {
	requireFloat32("batchnorm2d", x, mean, variance, weight, bias)
	n, c, h, w := requireImage("batchnorm2d", x)
	for _, p := range []*tensor.RawTensor{mean, variance, weight, bias} {
		if p.NumElements() != c {
			panic(tensor.NewShapeError("batchnorm2d", x.Shape(), "expected %d channels, statistics have %d", p.NumElements(), c))
		}
	}

	result := cpu.newRaw("batchnorm2d", x.Shape())
	src, dst := x.AsFloat32(), result.AsFloat32()
	m, v, g, beta := mean.AsFloat32(), variance.AsFloat32(), weight.AsFloat32(), bias.AsFloat32()
	plane := h * w

	// Fold the statistics into one scale and shift per channel.
	scale := make([]float32, c)
	shift := make([]float32, c)
	for ch := 0; ch < c; ch++ {
		scale[ch] = g[ch] / float32(math.Sqrt(float64(v[ch]+eps)))
		shift[ch] = beta[ch] - m[ch]*scale[ch]
	}

	cpu.forPlanes(n, c, func(b, ch int) {
		off := (b*c + ch) * plane
		s, t := scale[ch], shift[ch]
		for i := off; i < off+plane; i++ {
			dst[i] = src[i]*s + t
		}
	})
	return result
}
