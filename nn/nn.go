// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/tensor"
)

// ErrInvalidConfig is wrapped by the panics of layer constructors that are
// given impossible hyperparameters.
var ErrInvalidConfig = nn.ErrInvalidConfig

// Initialization

// InitScheme selects how Conv2D and Linear initialize their tensors.
type InitScheme = nn.InitScheme

// Initialization schemes.
const (
	InitDefault        = nn.InitDefault
	InitKaimingUniform = nn.InitKaimingUniform
	InitSmallNormal    = nn.InitSmallNormal
)

// Initializer draws initial parameter values from one seeded source.
type Initializer = nn.Initializer

// NewInitializer creates an Initializer seeded with seed.
func NewInitializer(seed int64) *Initializer {
	return nn.NewInitializer(seed)
}

// Layers

// ConvSpec holds the hyperparameters of a Conv2D.
type ConvSpec = nn.ConvSpec

// Conv2D represents a 2D convolutional layer with optional groups.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	backend := cpu.New()
//	init := nn.NewInitializer(42)
//	conv := nn.NewConv2D(nn.ConvSpec{In: 3, Out: 64, Kernel: 7, Stride: 2, Padding: 3}, init, backend)
func NewConv2D[B tensor.Backend](spec ConvSpec, init *Initializer, backend B) *Conv2D[B] {
	return nn.NewConv2D(spec, init, backend)
}

// BatchNorm2D normalizes each channel of an [N, C, H, W] tensor.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch normalization layer with unit weight,
// zero bias and identity running statistics.
func NewBatchNorm2D[B tensor.Backend](channels int, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(channels, backend)
}

// Linear represents a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer.
//
// Example:
//
//	layer := nn.NewLinear(512, 10, init, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, init *Initializer, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, init, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Example:
//
//	pool := nn.NewMaxPool2D[Backend](3, 2, 0, true) // SqueezeNet: 109 -> 54
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, ceilMode bool) *MaxPool2D[B] {
	return nn.NewMaxPool2D[B](kernelSize, stride, padding, ceilMode)
}

// AdaptiveAvgPool2D averages each channel into a fixed output grid.
type AdaptiveAvgPool2D[B tensor.Backend] = nn.AdaptiveAvgPool2D[B]

// NewAdaptiveAvgPool2D creates an adaptive average pooling layer.
func NewAdaptiveAvgPool2D[B tensor.Backend](outH, outW int) *AdaptiveAvgPool2D[B] {
	return nn.NewAdaptiveAvgPool2D[B](outH, outW)
}

// Dropout zeroes elements with probability p in training mode.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout layer drawing its masks from rng.
func NewDropout[B tensor.Backend](p float64, rng *rand.Rand) *Dropout[B] {
	return nn.NewDropout[B](p, rng)
}

// Flatten reshapes [N, ...] into [N, features].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Activations

// ReLU represents max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// ReLU6 represents min(max(0, x), 6).
type ReLU6[B tensor.Backend] = nn.ReLU6[B]

// NewReLU6 creates a new ReLU6 activation layer.
func NewReLU6[B tensor.Backend]() *ReLU6[B] {
	return nn.NewReLU6[B]()
}

// HardSigmoid represents relu6(x+3)/6.
type HardSigmoid[B tensor.Backend] = nn.HardSigmoid[B]

// NewHardSigmoid creates a new hard sigmoid activation layer.
func NewHardSigmoid[B tensor.Backend]() *HardSigmoid[B] {
	return nn.NewHardSigmoid[B]()
}

// HardSwish represents x*relu6(x+3)/6.
type HardSwish[B tensor.Backend] = nn.HardSwish[B]

// NewHardSwish creates a new hard swish activation layer.
func NewHardSwish[B tensor.Backend]() *HardSwish[B] {
	return nn.NewHardSwish[B]()
}

// Containers

// Sequential applies its children in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a container whose children are named "0", "1", ...
//
// Example:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(512, 256, init, backend),
//	    nn.NewReLU[Backend](),
//	    nn.NewLinear(256, 10, init, backend),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NewNamedSequential creates a container with explicitly named children.
func NewNamedSequential[B tensor.Backend](children ...Child[B]) *Sequential[B] {
	return nn.NewNamedSequential(children...)
}

// Concat applies every branch to the same input and joins the results
// along the channel axis.
type Concat[B tensor.Backend] = nn.Concat[B]

// NewConcat creates a channel concatenation of branches.
func NewConcat[B tensor.Backend](branches ...Child[B]) *Concat[B] {
	return nn.NewConcat(branches...)
}

// Building blocks

// ConvNormAct is convolution, batch normalization, then an activation.
type ConvNormAct[B tensor.Backend] = nn.ConvNormAct[B]

// NewConvNormAct creates a conv/bn/activation block. act may be nil.
func NewConvNormAct[B tensor.Backend](spec ConvSpec, act Module[B], init *Initializer, backend B) *ConvNormAct[B] {
	return nn.NewConvNormAct(spec, act, init, backend)
}

// Residual is the two-convolution basic block of ResNet18.
type Residual[B tensor.Backend] = nn.Residual[B]

// NewResidual creates a basic block. A 1x1 projection shortcut is added
// when stride or channel count changes.
func NewResidual[B tensor.Backend](in, out, stride int, init *Initializer, backend B) *Residual[B] {
	return nn.NewResidual(in, out, stride, init, backend)
}

// InvertedResidual is the expand, depthwise, project block of MobileNetV3
// and MnasNet.
type InvertedResidual[B tensor.Backend] = nn.InvertedResidual[B]

// NewMobileInvertedResidual creates a MobileNetV3 block: 3x3 depthwise,
// hard swish, no biases.
func NewMobileInvertedResidual[B tensor.Backend](in, out, stride int, factor float64, init *Initializer, backend B) *InvertedResidual[B] {
	return nn.NewMobileInvertedResidual(in, out, stride, factor, init, backend)
}

// NewMnasInvertedResidual creates a MnasNet block with the given depthwise
// kernel and ReLU6.
func NewMnasInvertedResidual[B tensor.Backend](in, out, kernel, stride int, factor float64, init *Initializer, backend B) *InvertedResidual[B] {
	return nn.NewMnasInvertedResidual(in, out, kernel, stride, factor, init, backend)
}

// SqueezeExcitation rescales channels by a learned gate.
type SqueezeExcitation[B tensor.Backend] = nn.SqueezeExcitation[B]

// NewSqueezeExcitation creates a squeeze-and-excitation block.
func NewSqueezeExcitation[B tensor.Backend](in, reduced int, init *Initializer, backend B) *SqueezeExcitation[B] {
	return nn.NewSqueezeExcitation(in, reduced, init, backend)
}

// Fire is the squeeze/expand module of SqueezeNet.
type Fire[B tensor.Backend] = nn.Fire[B]

// NewFire creates a Fire module with expand1x1+expand3x3 output channels.
func NewFire[B tensor.Backend](in, squeeze, expand1x1, expand3x3 int, scheme InitScheme, init *Initializer, backend B) *Fire[B] {
	return nn.NewFire(in, squeeze, expand1x1, expand3x3, scheme, init, backend)
}
