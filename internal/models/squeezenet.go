package models

import (
	"strconv"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// SqueezeNetName is the canonical name of the SqueezeNet architecture.
const SqueezeNetName = "SqueezeNet"

// SqueezeNet versions.
const (
	SqueezeNet1_0 = "1_0"
	SqueezeNet1_1 = "1_1"
)

// squeezeNetFeatures is the channel count every version hands to the classifier.
const squeezeNetFeatures = 512

// SqueezeNetConfig holds the SqueezeNet construction parameters.
type SqueezeNetConfig struct {
	Version    string // SqueezeNet1_0 or SqueezeNet1_1
	NumClasses int
	Dropout    float64 // classifier dropout probability
}

// DefaultSqueezeNetConfig returns version 1_0 with dropout 0.5.
func DefaultSqueezeNetConfig(numClasses int) SqueezeNetConfig {
	return SqueezeNetConfig{
		Version:    SqueezeNet1_0,
		NumClasses: numClasses,
		Dropout:    0.5,
	}
}

// fireSpec is (in, squeeze, expand1x1, expand3x3); a zero value marks a max pool.
type fireSpec struct{ in, squeeze, e1, e3 int }

var maxPool = fireSpec{}

var squeezeNetSchedules = map[string]struct {
	stemOut, stemKernel int
	layers              []fireSpec
}{
	SqueezeNet1_0: {96, 7, []fireSpec{
		maxPool,
		{96, 16, 64, 64}, {128, 16, 64, 64}, {128, 32, 128, 128},
		maxPool,
		{256, 32, 128, 128}, {256, 48, 192, 192}, {384, 48, 192, 192}, {384, 64, 256, 256},
		maxPool,
		{512, 64, 256, 256},
	}},
	SqueezeNet1_1: {64, 3, []fireSpec{
		maxPool,
		{64, 16, 64, 64}, {128, 16, 64, 64},
		maxPool,
		{128, 32, 128, 128}, {256, 32, 128, 128},
		maxPool,
		{256, 48, 192, 192}, {384, 48, 192, 192}, {384, 64, 256, 256}, {512, 64, 256, 256},
	}},
}

// NewSqueezeNet builds SqueezeNet 1_0 or 1_1. Feature convs are
// Kaiming-uniform initialized; the final classifier conv draws from N(0, 0.01²).
// All biases start at zero.
func NewSqueezeNet[B tensor.Backend](cfg SqueezeNetConfig, backend B, opts ...Option) (*Model[B], error) {
	schedule, ok := squeezeNetSchedules[cfg.Version]
	if !ok {
		return nil, configErrorf(SqueezeNetName, "unsupported version %q: 1_0 or 1_1 expected", cfg.Version)
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, configErrorf(SqueezeNetName, "dropout must be in [0, 1), got %g", cfg.Dropout)
	}

	init := nn.NewInitializer(buildOptions(opts).seed)
	m, err := assemble(SqueezeNetName, cfg.NumClasses, func() []nn.Child[B] {
		features := nn.NewSequential[B](
			nn.NewConv2D(nn.ConvSpec{
				In: InputChannels, Out: schedule.stemOut, Kernel: schedule.stemKernel, Stride: 2,
				Bias: true, Init: nn.InitKaimingUniform,
			}, init, backend),
			nn.NewReLU[B](),
		)
		for _, l := range schedule.layers {
			if l == maxPool {
				features.Add(nn.NewMaxPool2D[B](3, 2, 0, true))
				continue
			}
			features.Add(nn.NewFire(l.in, l.squeeze, l.e1, l.e3, nn.InitKaimingUniform, init, backend))
		}

		classifier := nn.NewSequential[B](
			nn.NewDropout[B](cfg.Dropout, init.Source()),
			nn.NewConv2D(nn.ConvSpec{
				In: squeezeNetFeatures, Out: cfg.NumClasses, Kernel: 1,
				Bias: true, Init: nn.InitSmallNormal,
			}, init, backend),
			nn.NewReLU[B](),
			nn.NewAdaptiveAvgPool2D[B](1, 1),
			nn.NewFlatten[B](),
		)

		return []nn.Child[B]{
			{Name: "features", Module: features},
			{Name: "classifier", Module: classifier},
		}
	})
	if err != nil {
		return nil, err
	}
	m.config = map[string]string{
		ConfigVersion: cfg.Version,
		ConfigDropout: strconv.FormatFloat(cfg.Dropout, 'g', -1, 64),
	}
	return m, nil
}
