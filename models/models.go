// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/tensor"
)

// Model is an assembled architecture: a named module tree with a fixed
// number of output classes.
//
// Methods:
//
//	Forward(x) (*tensor.Tensor[float32, B], error)
//	    Maps [batch, 3, H, W] to [batch, num_classes] logits.
//
//	OutputShape(in) (tensor.Shape, error)
//	    Propagates a shape through the tree without computing anything.
//
//	Summary() string
//	    Returns the layer tree, one module per line.
type Model[B tensor.Backend] = models.Model[B]

// InputChannels is the channel count every architecture expects.
const InputChannels = models.InputChannels

// Canonical architecture names.
const (
	VGG19Name       = models.VGG19Name
	ResNet18Name    = models.ResNet18Name
	MnasNetName     = models.MnasNetName
	MobileNetV3Name = models.MobileNetV3Name
	SqueezeNetName  = models.SqueezeNetName
)

// SqueezeNet versions.
const (
	SqueezeNet1_0 = models.SqueezeNet1_0
	SqueezeNet1_1 = models.SqueezeNet1_1
)

// Errors

// ErrConfiguration is wrapped by every *ConfigError.
var ErrConfiguration = models.ErrConfiguration

// ConfigError reports an invalid model configuration.
type ConfigError = models.ConfigError

// Options

// Option configures model construction.
type Option = models.Option

// DefaultSeed seeds parameter initialization when WithSeed is not given.
const DefaultSeed = models.DefaultSeed

// WithSeed sets the seed of parameter initialization and dropout masks.
func WithSeed(seed int64) Option {
	return models.WithSeed(seed)
}

// Registry

// Names returns the canonical names of every buildable architecture.
func Names() []string {
	return models.Names()
}

// CanonicalName resolves a case-insensitive selector name such as
// "resnet18" to its canonical architecture name.
func CanonicalName(name string) (string, error) {
	return models.CanonicalName(name)
}

// New builds the architecture named by name with default configuration.
//
// Example:
//
//	backend := cpu.New()
//	model, err := models.New("squeezenet", 10, backend, models.WithSeed(7))
func New[B tensor.Backend](name string, numClasses int, backend B, opts ...Option) (*Model[B], error) {
	return models.New(name, numClasses, backend, opts...)
}

// Construction parameter keys reported by Model.Config and accepted by Rebuild.
const (
	ConfigVersion    = models.ConfigVersion
	ConfigDropout    = models.ConfigDropout
	ConfigKernelSize = models.ConfigKernelSize
	ConfigPadding    = models.ConfigPadding
	ConfigStride     = models.ConfigStride
)

// Rebuild builds an architecture from the construction parameters another
// Model reported through Config.
//
// Example:
//
//	clone, err := models.Rebuild(model.Name(), model.NumClasses(), model.Config(), backend)
func Rebuild[B tensor.Backend](name string, numClasses int, config map[string]string, backend B, opts ...Option) (*Model[B], error) {
	return models.Rebuild(name, numClasses, config, backend, opts...)
}

// ParseTrained parses a trained flag value. Only "True" and "False" are accepted.
func ParseTrained(s string) (bool, error) {
	return models.ParseTrained(s)
}

// Architectures

// VGGConfig holds the VGG19 construction parameters.
type VGGConfig = models.VGGConfig

// DefaultVGGConfig returns kernel 3, padding 1, stride 1.
func DefaultVGGConfig(numClasses int) VGGConfig {
	return models.DefaultVGGConfig(numClasses)
}

// NewVGG19 builds VGG19 with batch normalization.
func NewVGG19[B tensor.Backend](cfg VGGConfig, backend B, opts ...Option) (*Model[B], error) {
	return models.NewVGG19(cfg, backend, opts...)
}

// NewResNet18 builds ResNet18.
func NewResNet18[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	return models.NewResNet18(numClasses, backend, opts...)
}

// NewMobileNetV3 builds the MobileNetV3 variant of this zoo.
func NewMobileNetV3[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	return models.NewMobileNetV3(numClasses, backend, opts...)
}

// NewMnasNet builds MnasNet.
func NewMnasNet[B tensor.Backend](numClasses int, backend B, opts ...Option) (*Model[B], error) {
	return models.NewMnasNet(numClasses, backend, opts...)
}

// SqueezeNetConfig holds the SqueezeNet construction parameters.
type SqueezeNetConfig = models.SqueezeNetConfig

// DefaultSqueezeNetConfig returns version 1_0 with dropout 0.5.
func DefaultSqueezeNetConfig(numClasses int) SqueezeNetConfig {
	return models.DefaultSqueezeNetConfig(numClasses)
}

// NewSqueezeNet builds SqueezeNet in the configured version.
func NewSqueezeNet[B tensor.Backend](cfg SqueezeNetConfig, backend B, opts ...Option) (*Model[B], error) {
	return models.NewSqueezeNet(cfg, backend, opts...)
}
