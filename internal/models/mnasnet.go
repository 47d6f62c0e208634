package models

import (
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// MnasNetName is the canonical name of the MnasNet architecture.
const MnasNetName = "MnasNet"

// mnasNetBlocks lists (in, out, kernel, stride, expansion factor) of each inverted residual.
var mnasNetBlocks = []struct {
	in, out, kernel, stride int
	factor                  float64
}{
	{32, 16, 3, 1, 1},
	{16, 24, 3, 2, 6},
	{24, 24, 3, 1, 6},
	{24, 40, 5, 2, 6},
	{40, 40, 5, 1, 6},
	{40, 40, 5, 1, 6},
	{40, 80, 3, 2, 6},
	{80, 80, 3, 1, 6},
	{80, 80, 3, 1, 6},
	{80, 96, 3, 1, 6},
	{96, 96, 3, 1, 6},
	{96, 192, 5, 2, 6},
	{192, 192, 5, 1, 6},
	{192, 192, 5, 1, 6},
	{192, 320, 3, 1, 6},
}

const mnasNetWidth = 1280

// NewMnasNet builds MnasNet: a ReLU6 stem, fifteen inverted residuals, a
// 1x1 head conv and a linear classifier.
func NewMnasNet[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	init := nn.NewInitializer(buildOptions(opts).seed)
	return assemble(MnasNetName, numClasses, func() []nn.Child[B] {
		layers := nn.NewSequential[B](nn.NewConvNormAct(
			nn.ConvSpec{In: InputChannels, Out: 32, Kernel: 3, Stride: 2, Padding: 1},
			nn.NewReLU6[B](), init, backend))
		for _, b := range mnasNetBlocks {
			layers.Add(nn.NewMnasInvertedResidual(b.in, b.out, b.kernel, b.stride, b.factor, init, backend))
		}
		layers.Add(nn.NewConvNormAct(
			nn.ConvSpec{In: 320, Out: mnasNetWidth, Kernel: 1},
			nn.NewReLU6[B](), init, backend))

		return []nn.Child[B]{
			{Name: "layers", Module: layers},
			{Name: "avgpool", Module: nn.NewAdaptiveAvgPool2D[B](1, 1)},
			{Name: "flatten", Module: nn.NewFlatten[B]()},
			{Name: "classifier", Module: nn.NewLinear(mnasNetWidth, numClasses, init, backend)},
		}
	})
}
