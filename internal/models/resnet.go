package models

import (
	"fmt"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// ResNet18Name is the canonical name of the ResNet18 architecture.
const ResNet18Name = "ResNet18"

// resnet18Layers lists (in, out, stride) of each residual group; every group
// holds two basic blocks, the first carrying the stride.
var resnet18Layers = []struct{ in, out, stride int }{
	{64, 64, 1},
	{64, 128, 2},
	{128, 256, 2},
	{256, 512, 2},
}

// NewResNet18 builds ResNet18 with basic residual blocks.
func NewResNet18[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	init := nn.NewInitializer(buildOptions(opts).seed)
	return assemble(ResNet18Name, numClasses, func() []nn.Child[B] {
		children := []nn.Child[B]{
			{Name: "stem", Module: nn.NewConvNormAct(
				nn.ConvSpec{In: InputChannels, Out: 64, Kernel: 7, Stride: 2, Padding: 3, Bias: true},
				nn.NewReLU[B](), init, backend)},
			{Name: "maxpool", Module: nn.NewMaxPool2D[B](3, 2, 1, false)},
		}
		for i, l := range resnet18Layers {
			children = append(children, nn.Child[B]{
				Name: fmt.Sprintf("layer%d", i+1),
				Module: nn.NewSequential[B](
					nn.NewResidual(l.in, l.out, l.stride, init, backend),
					nn.NewResidual(l.out, l.out, 1, init, backend),
				),
			})
		}
		return append(children,
			nn.Child[B]{Name: "avgpool", Module: nn.NewAdaptiveAvgPool2D[B](1, 1)},
			nn.Child[B]{Name: "flatten", Module: nn.NewFlatten[B]()},
			nn.Child[B]{Name: "fc", Module: nn.NewLinear(512, numClasses, init, backend)},
		)
	})
}
