package models

import (
	"strconv"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// VGG19Name is the canonical name of the VGG19 architecture.
const VGG19Name = "VGG19"

// vgg19Stages lists the conv widths of each group; every group ends in a 2x2 max pool.
var vgg19Stages = [][]int{
	{64, 64},
	{128, 128},
	{256, 256, 256, 256},
	{512, 512, 512, 512},
	{512, 512, 512, 512},
}

// vggPooledSize is the spatial size the features must be reduced to.
const vggPooledSize = 7

// VGGConfig holds the VGG19 construction parameters.
type VGGConfig struct {
	NumClasses int
	KernelSize int // every feature conv, default 3
	Padding    int // every feature conv, default 1
	Stride     int // every feature conv, default 1
}

// DefaultVGGConfig returns the configuration that maps 224x224 inputs to 7x7x512 features.
func DefaultVGGConfig(numClasses int) VGGConfig {
	return VGGConfig{
		NumClasses: numClasses,
		KernelSize: 3,
		Padding:    1,
		Stride:     1,
	}
}

// NewVGG19 builds VGG19 with batch norm.
//
// Geometry that does not reduce the input to 7x7 is accepted here and
// reported as a ShapeError by Forward, at the classifier's first Linear.
func NewVGG19[B tensor.Backend](cfg VGGConfig, backend B, opts ...Option) (*Model[B], error) {
	switch {
	case cfg.KernelSize <= 0:
		return nil, configErrorf(VGG19Name, "kernel_size must be positive, got %d", cfg.KernelSize)
	case cfg.Stride <= 0:
		return nil, configErrorf(VGG19Name, "stride must be positive, got %d", cfg.Stride)
	case cfg.Padding < 0:
		return nil, configErrorf(VGG19Name, "padding must be non-negative, got %d", cfg.Padding)
	}

	init := nn.NewInitializer(buildOptions(opts).seed)
	m, err := assemble(VGG19Name, cfg.NumClasses, func() []nn.Child[B] {
		features := nn.NewSequential[B]()
		in := InputChannels
		for _, stage := range vgg19Stages {
			for _, out := range stage {
				features.Add(nn.NewConvNormAct(nn.ConvSpec{
					In:      in,
					Out:     out,
					Kernel:  cfg.KernelSize,
					Stride:  cfg.Stride,
					Padding: cfg.Padding,
					Bias:    true,
				}, nn.NewReLU[B](), init, backend))
				in = out
			}
			features.Add(nn.NewMaxPool2D[B](2, 2, 0, false))
		}

		classifier := nn.NewSequential[B](
			nn.NewDropout[B](0.5, init.Source()),
			nn.NewLinear(vggPooledSize*vggPooledSize*512, 4096, init, backend),
			nn.NewReLU[B](),
			nn.NewDropout[B](0.5, init.Source()),
			nn.NewLinear(4096, 4096, init, backend),
			nn.NewReLU[B](),
			nn.NewLinear(4096, cfg.NumClasses, init, backend),
		)

		return []nn.Child[B]{
			{Name: "features", Module: features},
			{Name: "flatten", Module: nn.NewFlatten[B]()},
			{Name: "classifier", Module: classifier},
		}
	})
	if err != nil {
		return nil, err
	}
	m.config = map[string]string{
		ConfigKernelSize: strconv.Itoa(cfg.KernelSize),
		ConfigPadding:    strconv.Itoa(cfg.Padding),
		ConfigStride:     strconv.Itoa(cfg.Stride),
	}
	return m, nil
}
