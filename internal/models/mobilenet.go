package models

import (
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// MobileNetV3Name is the canonical name of the MobileNetV3 architecture.
const MobileNetV3Name = "MobileNetV3"

// mobileNetV3Blocks lists (in, out, stride, expansion factor) of each inverted residual.
var mobileNetV3Blocks = []struct {
	in, out, stride int
	factor          float64
}{
	{16, 16, 2, 1},
	{16, 24, 2, 2},
	{24, 40, 2, 2},
	{40, 80, 2, 1},
	{80, 160, 2, 2},
	{160, 320, 2, 1},
	{320, 640, 2, 1},
	{640, 1280, 2, 1},
}

const (
	mobileNetV3Width   = 1280
	mobileNetV3Dropout = 0.2
)

// NewMobileNetV3 builds the MobileNetV3 variant: a hard-swish stem, eight
// strided inverted residuals and a convolutional classifier head.
func NewMobileNetV3[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	init := nn.NewInitializer(buildOptions(opts).seed)
	return assemble(MobileNetV3Name, numClasses, func() []nn.Child[B] {
		features := nn.NewSequential[B](nn.NewConvNormAct(
			nn.ConvSpec{In: InputChannels, Out: 16, Kernel: 3, Stride: 2, Padding: 1},
			nn.NewHardSwish[B](), init, backend))
		for _, b := range mobileNetV3Blocks {
			features.Add(nn.NewMobileInvertedResidual(b.in, b.out, b.stride, b.factor, init, backend))
		}

		classifier := nn.NewSequential[B](
			nn.NewAdaptiveAvgPool2D[B](1, 1),
			nn.NewConv2D(nn.ConvSpec{In: mobileNetV3Width, Out: mobileNetV3Width, Kernel: 1, Bias: true}, init, backend),
			nn.NewHardSwish[B](),
			nn.NewDropout[B](mobileNetV3Dropout, init.Source()),
			nn.NewConv2D(nn.ConvSpec{In: mobileNetV3Width, Out: numClasses, Kernel: 1, Bias: true}, init, backend),
			nn.NewFlatten[B](),
		)

		return []nn.Child[B]{
			{Name: "features", Module: features},
			{Name: "classifier", Module: classifier},
		}
	})
}
